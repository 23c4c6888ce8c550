package domain

// SystemStats is one sample of host utilisation, in percent.
// GPU is nil on hosts without a supported GPU.
type SystemStats struct {
	CPU float64  `json:"cpu"`
	RAM float64  `json:"ram"`
	GPU *float64 `json:"gpu"`
}
