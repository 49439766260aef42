package model

// ReceiptResponse represents the response for a single receipt
type ReceiptResponse struct {
	ID         string                `json:"id"`
	Merchant   string                `json:"merchant"`
	Date       string                `json:"date"`
	Total      string                `json:"total"`
	Tax        string                `json:"tax,omitempty"`
	Subtotal   string                `json:"subtotal,omitempty"`
	Items      []ReceiptItemResponse `json:"items"`
	Category   string                `json:"category,omitempty"`
	Confidence string                `json:"confidence"`
	Provenance string                `json:"provenance"`
	ImageURL   string                `json:"imageUrl,omitempty"`
	Notes      string                `json:"notes,omitempty"`
	CreatedAt  string                `json:"createdAt"`
	UpdatedAt  string                `json:"updatedAt"`
}

// ReceiptItemResponse represents a single receipt item
type ReceiptItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
	Price    string `json:"price"`
	Category string `json:"category,omitempty"`
}

// ReceiptsListResponse represents a paginated list of receipts
type ReceiptsListResponse struct {
	Data       []ReceiptResponse  `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
