package repoargs

type RepositoryName string

const (
	UserRepoName        RepositoryName = "user"
	TransactionRepoName RepositoryName = "wallet_transaction"
)
