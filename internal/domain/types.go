package domain

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

const (
	DefaultCreditDescription = "Wallet credit"
	DefaultDebitDescription  = "Wallet debit"
)

// MaxCurrencyScale точность колонок сумм в SQL хранилищах (DECIMAL(20,4)). Более точные суммы БД округлит.
const MaxCurrencyScale int32 = 4
