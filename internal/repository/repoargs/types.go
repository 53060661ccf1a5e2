package repoargs

type RepositoryName string

const (
	UserRepoName         RepositoryName = "user"
	ProductRepoName      RepositoryName = "product"
	OrderRepoName        RepositoryName = "order"
	PointHistoryRepoName RepositoryName = "point_history"
)
