package expire_holds

import "github.com/google/uuid"

// Response результат одного прохода
type Response struct {
	CancelledIDs []uuid.UUID
}
