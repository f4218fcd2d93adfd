package transport

// StartShareRequest — POST /share/start
type StartShareRequest struct {
	DriverName string `json:"driver_name"`
	BusID      string `json:"bus_id"`
	Route      string `json:"route"`
}

// FixRequest — POST /drivers/{bus_id}/fix, фид от устройства.
// RecordedAt — миллисекунды epoch; 0 означает "сейчас".
type FixRequest struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	RecordedAt int64   `json:"recorded_at,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
