package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type BackfillReviewMailData struct {
	BatchID     string               `json:"batchId"`
	Suggestions []BackfillSuggestion `json:"suggestions"`
	Expiration  int                  `json:"expiration"` // horas
}

type DispatchManifestMailData struct {
	Date           string `json:"date"`
	WindowStart    string `json:"windowStart"`
	WindowEnd      string `json:"windowEnd"`
	Pickups        int    `json:"pickups"`
	Dropoffs       int    `json:"dropoffs"`
	Unmatched      int    `json:"unmatched"`
	ObjectKey      string `json:"objectKey"`
	AttachmentName string `json:"attachmentName"`
	AttachmentCSV  []byte `json:"attachmentCsv"`
}
