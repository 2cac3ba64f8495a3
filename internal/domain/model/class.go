package model

// Class is the read-model of a video class owned by the catalogue.
// Only the fields the access rules need are carried here.
type Class struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	IsFree bool   `json:"is_free"`
	Price  int64  `json:"price"`
}
