// Package wizard implements a multi-step form engine with per-step
// validation.
//
// An Engine holds an ordered list of Steps, the value of every field and the
// current validation messages. Hosts (the terminal storefront, the HTTP
// server, tests) drive it with UpdateField, Advance, Retreat, Submit and
// Reset and render from Snapshot. The engine never talks to the terminal or
// the network; the final submission is delegated to a Submitter.
//
// # State Machine
//
//	Step0 --Advance(valid)--> Step1 --> ... --> StepN-1 --Submit(accepted)--> Completed
//	  ^                         |
//	  +--------Retreat----------+
//
// Advance on an invalid step stays put and returns a *ValidationFailed.
// Completed is left only through Reset.
//
// # Rules
//
// Rules are small values built with Required, MinLength, Matches,
// EqualsField and OneOf. For a given field, only the first failing rule is
// reported:
//
//	wizard.Step{
//	    ID:     "account",
//	    Fields: []string{"email", "password"},
//	    Rules: []wizard.Rule{
//	        wizard.Required("email", "Please enter your email address"),
//	        wizard.Matches("email", emailPattern, "Email address is not valid"),
//	    },
//	}
//
// # Errors
//
// Every expected condition is an error value: *ValidationFailed,
// *SubmissionRejected (which wraps ErrSubmitTimeout on timeouts) and the
// ignorable sentinels ErrNavigationIgnored, ErrSubmitInFlight and ErrStale.
// Use Classify or ShortMessage to turn them into something displayable.
package wizard
