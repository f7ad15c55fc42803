package domain

// ProductRepository описывает требования к хранилищу каталога. Это
// единственный писатель поля stock во время оформления заказа.
type ProductRepository interface {
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// DecrementStock атомарно уменьшает остаток на qty, если текущего
	// остатка достаточно. Реализация обязана выполнять это одной условной
	// операцией, без read-then-write. Возвращает товар после списания,
	// ErrProductNotFound или ErrInsufficientStock.
	DecrementStock(id string, qty int32) (Product, error)
	// Create сохраняет новый товар каталога.
	Create(product Product) error
	// Restock атомарно увеличивает остаток на qty (администрирование/сидинг).
	Restock(id string, qty int32) (Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ как единое целое. Возвращает ошибку,
	// если запись или публичный идентификатор уже существуют.
	Create(order Order) error
	// GetByPublicID возвращает заказ по трекинг-токену или ErrOrderNotFound.
	GetByPublicID(publicID string) (Order, error)
	// ListByUser возвращает заказы пользователя с ограничением на количество.
	ListByUser(userID string, limit int) ([]Order, error)
	// Save применяет изменения статуса с учётом optimistic locking;
	// позиции заказа после создания не мутируются.
	Save(order Order) error
}
