package view

// Response is the envelope returned by every API endpoint.
type Response[T any] struct {
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateResponse builds the response envelope. The request argument is kept for
// signature compatibility with handlers that want to echo failing input back in
// logs; it is not serialized.
func CreateResponse[T any](data T, err error, _ any, message string) Response[T] {
	resp := Response[T]{
		Data:    data,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
