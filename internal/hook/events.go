package hook

// Event names exchanged with the host.
const (
	EventCellCount    = "sendCellCount"
	EventCellAliveMap = "sendCellAliveMap"
	EventUpdateFps    = "updateFps"
)

// CellCount is the payload of sendCellCount.
type CellCount struct {
	W int `json:"w"`
	H int `json:"h"`
}

// AliveMap is the payload of sendCellAliveMap. Keys are grid.Key values.
type AliveMap struct {
	Cells map[string]bool `json:"cells"`
}

// FPS is the payload of updateFps.
type FPS struct {
	FPS float64 `json:"fps"`
}
