package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltBucket = "history"
	boltKey    = "CountyHistory"
)

// BoltStore：把名称列表保存在 bbolt 文件中的单个键下，适合与其他本地状态共用一个数据文件
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore：打开（必要时创建）数据文件与桶；文件被其他进程占用时 1 秒后失败
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Load() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucket)).Get([]byte(boltKey))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &names)
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *BoltStore) Save(names []string) error {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(boltKey), b)
	})
}
