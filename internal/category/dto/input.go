package dto

type RenameCategoryInput struct {
	BusinessID string `json:"-"`
	From       string `json:"from" binding:"required"`
	To         string `json:"to" binding:"required"`
}

type RenameResult struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Updated int64  `json:"updated"`
}
