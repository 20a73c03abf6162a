package signup

// SignupsPath is the API endpoint accepting applications.
const SignupsPath = "/api/v1/signups"

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
