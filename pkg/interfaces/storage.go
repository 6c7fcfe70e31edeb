package interfaces

import (
	"github.com/goliatone/go-til/pkg/storage"
)

// StorageProvider aliases the storage provider contract so service packages
// can depend on interfaces alone.
type StorageProvider = storage.Provider

// Rows aliases storage.Rows.
type Rows = storage.Rows

// Result aliases storage.Result.
type Result = storage.Result

// Transaction aliases storage.Transaction.
type Transaction = storage.Transaction
