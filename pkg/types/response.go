package types

// SuccessEnvelope wraps every 2xx body as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// MessageBody is the data of operations that return no resource, such as
// deleting a place or rejecting a user.
type MessageBody struct {
	Message string `json:"message"`
}

// APIError is the stable error shape. Details carries per-field problems
// for validation failures and is omitted otherwise.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
