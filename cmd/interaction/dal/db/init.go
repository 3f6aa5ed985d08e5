package db

import (
	"VidHub.com/pkg/database"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init init DB
func Init() {
	var err error
	DB, err = database.Open(database.OptionsFromConfig())
	if err != nil {
		panic(err)
	}
	if err = database.Migrate(DB); err != nil {
		panic(err)
	}
}

// Store 互动服务的持久层, 行变更与对应计数增量在同一事务内提交
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Default 使用全局 DB
func Default() *Store {
	return NewStore(DB)
}

func (s *Store) DB() *gorm.DB {
	return s.db
}
