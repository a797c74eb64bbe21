package dto

type PostingResponse struct {
	ID          string `json:"id"`
	ExternalUID string `json:"external_uid"`
	Title       string `json:"title"`
	EndDate     string `json:"end_date,omitempty"`
	PostedDate  string `json:"posted_date"`
	CreatedAt   string `json:"created_at"`
}

type PostingDetailResponse struct {
	Posting PostingResponse `json:"posting"`
	Status  StatusResponse  `json:"status"`
}

type StatusResponse struct {
	Interested bool   `json:"interested"`
	Applied    bool   `json:"applied"`
	Skip       bool   `json:"skip"`
	AppliedOn  string `json:"applied_on,omitempty"`
}
