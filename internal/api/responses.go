package api

type ErrorResponse struct {
	Error   string      `json:"error" example:"something went wrong"`
	Details interface{} `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// PagedResponse wraps list endpoints that support page/page_size.
type PagedResponse struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total" example:"42"`
	Page     int         `json:"page" example:"1"`
	PageSize int         `json:"page_size" example:"20"`
}
