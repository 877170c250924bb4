// Package router wires the HTTP handlers into a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fintrack/internal/backup"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/store"

	_ "fintrack/internal/docs" // swagger docs
)

// Deps holds the services the routes are served by.
type Deps struct {
	Accounts     services.AccountServicer
	Transactions services.TransactionServicer
	IncomeGroups services.IncomeGroupServicer
	Views        services.ViewServicer
	Guard        services.FundsGuard
	Backups      handlers.BackupServicer
	Reports      handlers.ReportBuilder

	BackupPassphrase string
	RecentLimit      int
}

// NewDeps builds every service on top of s.
func NewDeps(s *store.Store, backupPassphrase string, recentLimit int) Deps {
	views := services.NewViewService(s)
	return Deps{
		Accounts:         services.NewAccountService(s),
		Transactions:     services.NewTransactionService(s),
		IncomeGroups:     services.NewIncomeGroupService(s),
		Views:            views,
		Guard:            services.NewFundsGuard(s),
		Backups:          backup.NewService(s),
		Reports:          report.NewGenerator(views),
		BackupPassphrase: backupPassphrase,
		RecentLimit:      recentLimit,
	}
}

// Setup returns the engine serving the API under /api/v1.
func Setup(d Deps) *gin.Engine {
	accountHandler := handlers.NewAccountHandler(d.Accounts, d.Views)
	transactionHandler := handlers.NewTransactionHandler(d.Transactions, d.Guard)
	incomeGroupHandler := handlers.NewIncomeGroupHandler(d.IncomeGroups, d.Views)
	viewHandler := handlers.NewViewHandler(d.Views, d.RecentLimit)
	streamHandler := handlers.NewStreamHandler(d.Views, d.RecentLimit)
	backupHandler := handlers.NewBackupHandler(d.Backups, d.Reports, d.BackupPassphrase)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/lookup", accountHandler.GetAccountByName)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	transactions := v1.Group("/transactions")
	transactions.GET("", viewHandler.ListTransactions)
	transactions.GET("/recent", viewHandler.RecentTransactions)
	transactions.POST("/income", transactionHandler.AddIncome)
	transactions.POST("/expense", transactionHandler.AddExpense)
	transactions.POST("/transfer", transactionHandler.MakeTransfer)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.EditTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	incomeGroups := v1.Group("/income-groups")
	incomeGroups.POST("", incomeGroupHandler.CreateIncomeGroup)
	incomeGroups.GET("", incomeGroupHandler.ListIncomeGroups)
	incomeGroups.GET("/:id", incomeGroupHandler.GetIncomeGroup)
	incomeGroups.PUT("/:id", incomeGroupHandler.UpdateIncomeGroup)
	incomeGroups.DELETE("/:id", incomeGroupHandler.DeleteIncomeGroup)

	v1.GET("/transfers", viewHandler.TransferHistory)
	v1.GET("/totals", viewHandler.Totals)
	v1.GET("/streams/:name", streamHandler.Stream)

	v1.GET("/backup", backupHandler.Export)
	v1.POST("/backup/restore", backupHandler.Restore)
	v1.DELETE("/data", backupHandler.Wipe)
	v1.GET("/report.xlsx", backupHandler.Report)

	return router
}
