// Package signup implements the subscription signup form.
//
// The form is a wizard.Engine with four steps:
//
//	account -> shipping -> payment -> review
//
// Submitting on the review step turns the form values into an Application
// and hands it to a Submitter:
//
//   - SimulatedSubmitter accepts after a fixed delay. The terminal client
//     uses it when no server is configured.
//   - HTTPSubmitter posts to a midnightbrew-server, retrying transient
//     failures with exponential backoff.
//
// # Error Handling
//
// HTTPSubmitter returns *SubmitError values classified by ErrorType. A
// 409 or 422 answer becomes ErrTypeRejected, which is never retried; the
// server's message is what the user sees on the review step. Use
// TroubleshootingHint for longer advice:
//
//	if _, err := form.Submit(ctx); err != nil {
//	    fmt.Println(signup.TroubleshootingHint(err))
//	}
//
// Passwords and card details are never logged; Application.LogFields and
// Application.String mask them.
package signup
