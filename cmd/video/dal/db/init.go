package db

import "gorm.io/gorm"

// Store 视频查询层, 只读投影加视频创建
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}
