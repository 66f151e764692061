package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no record matches the given key, for lookups
// as well as updates and deletes. Any other error means the store itself failed.
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
