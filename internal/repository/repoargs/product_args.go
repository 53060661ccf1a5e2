package repoargs

type CreateProduct struct {
	Name  string
	Price int64
	Stock int64
}
