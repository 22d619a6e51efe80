package models

// CodeSuccess is the envelope code of every successful response.
const CodeSuccess = "SUCCESS"

// Response is the envelope every directory endpoint answers with.
type Response[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// OK reports whether the envelope carries a success code.
func (r Response[T]) OK() bool {
	return r.Code == CodeSuccess
}
