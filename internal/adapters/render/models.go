package render

import "encoding/json"

// uploadResponse is the api/upload/ payload
type uploadResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// infosResponse is the api/infos/ payload
type infosResponse struct {
	Headers    []string `json:"headers"`
	IDs        []string `json:"ids"`
	Modifiers  []string `json:"modifier_1s"`
	Behaviors  []string `json:"behaviors"`
	Categories []string `json:"categories"`
}

// DistanceQuery asks the backend to compare two groups of transition networks
// group entries are "<dataset name>/<gml path>"
type DistanceQuery struct {
	GroupA      []string
	GroupB      []string
	Algorithm   string
	SetIndices  bool
	RandomState int
	NInit       int
	Linkage     string
}

// DistanceResult is the api/distances/ payload with the JSON string fields decoded
type DistanceResult struct {
	ImageURL   string          `json:"image_url"`
	Image2URL  string          `json:"image2_url"`
	DistMatrix json.RawMessage `json:"dist_matrix"`
	NodeDict   any             `json:"node_dict"`
	Labels     json.RawMessage `json:"labels"`
}

// distancesResponse is the raw api/distances/ payload
// dist_matrix and labels arrive as JSON encoded strings
type distancesResponse struct {
	ImageURL   string `json:"image_url"`
	Image2URL  string `json:"image2_url"`
	DistMatrix string `json:"dist_matrix"`
	NodeDict   any    `json:"node_dict"`
	Labels     string `json:"labels"`
}
