package model

// Chunk is one provider's rendered view of one knowledge-base document.
type Chunk struct {
	HMO   HMO    `json:"hmo"`
	Topic string `json:"topic"`
	Text  string `json:"text"`
}
