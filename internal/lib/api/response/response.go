package response

const (
	StatusStarted = "started"
	StatusError   = "error"
)

// Response is the acknowledgement envelope returned by every endpoint.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func Started(msg string) Response {
	return Response{
		Status:  StatusStarted,
		Message: msg,
	}
}

func OK() Response {
	return Response{
		Status: "ok",
	}
}

func Error(msg string) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
	}
}
