package models

// Category groups channels (group-title or #EXTGRP from M3U). Categories are flat: ParentID is always 0.
type Category struct {
	ID       int64  `json:"category_id"`
	Name     string `json:"category_name"`
	ParentID int64  `json:"parent_id"`
}
