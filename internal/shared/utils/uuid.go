package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewUUID генерирует новый UUID v4
func NewUUID() string {
	return uuid.New().String()
}

// NewPushID генерирует ключ для append-only записей: миллисекундный
// timestamp + UUID. Лексикографический порядок ключей примерно совпадает
// с порядком записи, коллизии исключены.
func NewPushID(at time.Time) string {
	return fmt.Sprintf("%013d-%s", at.UnixMilli(), uuid.New().String())
}
