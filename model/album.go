package model

// Album 表示一张专辑
type Album struct {
	ID     string `json:"id" gorm:"primaryKey;size:64"`
	Title  string `json:"title" gorm:"size:255;not null;index"`
	Artist string `json:"artist" gorm:"size:255;index"`
	Image  string `json:"image,omitempty" gorm:"size:512"`
	Year   int    `json:"year"`
}

// TableName 指定表名
func (Album) TableName() string {
	return "albums"
}

// Artist 艺术家
type Artist struct {
	ID        string `json:"id" gorm:"primaryKey;size:64"`
	Name      string `json:"name" gorm:"size:255;not null;index"`
	Image     string `json:"image,omitempty" gorm:"size:512"`
	Followers int64  `json:"followers"`
}

// TableName 指定表名
func (Artist) TableName() string {
	return "artists"
}
