package database

import "time"

// Photo is one row of PhotoMetadata.
type Photo struct {
	ID        int64  `json:"id"`
	ImagePath string `json:"imagePath"`
	FileName  string `json:"fileName"`
	CreatedAt string `json:"createdAt"`
	Location  string `json:"location"`
	Rotation  int    `json:"rotation"`
}

// Year returns the 4-digit year prefix of CreatedAt, or "" when CreatedAt is
// too short to carry one.
func (p Photo) Year() string {
	if len(p.CreatedAt) < 4 {
		return ""
	}
	return p.CreatedAt[:4]
}

type Tag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PhotoCount int    `json:"photoCount"`
}

// PhotoPage is one page of photos carrying a tag.
type PhotoPage struct {
	Tag        string  `json:"tag"`
	Items      []Photo `json:"items"`
	TotalItems int     `json:"totalItems"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// Counts holds row totals for the three library tables.
type Counts struct {
	Photos int `json:"photos"`
	Tags   int `json:"tags"`
	Links  int `json:"links"`
}

// LastRun is the bookkeeping written after every finished tagging run.
type LastRun struct {
	At     time.Time `json:"at"`
	Photos int       `json:"photos"`
	Tags   int       `json:"tags"`
	Errors int       `json:"errors"`
}
