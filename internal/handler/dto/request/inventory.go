package request

type ImportUnitsRequest struct {
	// Payloads are the opaque per-unit contents (keys, codes); one unit is
	// created per entry.
	Payloads []string `json:"payloads" binding:"required,min=1,dive,required"`
}
