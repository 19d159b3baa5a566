package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Tests are skipped when no
// MySQL instance named 'servicedesk_test' is reachable on localhost:3306.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/servicedesk_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"MessageLogs", "MessageTemplates", "ChannelConfigs",
		"OrderItems", "Orders", "Clients", "Stores", "Companies",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the repositories expect.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createCompaniesTable := `
	CREATE TABLE IF NOT EXISTS Companies (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createStoresTable := `
	CREATE TABLE IF NOT EXISTS Stores (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		companyId INT NOT NULL,
		name VARCHAR(150) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_company (companyId)
	)`

	createClientsTable := `
	CREATE TABLE IF NOT EXISTS Clients (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		storeId INT NOT NULL,
		name VARCHAR(150) NOT NULL,
		phone VARCHAR(30) NOT NULL,
		email VARCHAR(150),
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_store (storeId)
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		storeId INT NOT NULL,
		clientId INT NOT NULL,
		createdById INT NOT NULL,
		orderNumber VARCHAR(30) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'RECEIVED',
		totalAmount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		pausedReason VARCHAR(500),
		whatsappSent TINYINT(1) NOT NULL DEFAULT 0,
		emailSent TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finishedAt DATETIME NULL,
		paidAt DATETIME NULL,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE INDEX idx_order_number (orderNumber),
		INDEX idx_store (storeId)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		serviceName VARCHAR(150) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`

	createChannelConfigsTable := `
	CREATE TABLE IF NOT EXISTS ChannelConfigs (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		companyId INT NOT NULL UNIQUE,
		instanceName VARCHAR(100) NOT NULL,
		apiKey VARCHAR(255) NOT NULL,
		apiUrl VARCHAR(255) NOT NULL,
		isConnected TINYINT(1) NOT NULL DEFAULT 0,
		phoneNumber VARCHAR(30),
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createMessageTemplatesTable := `
	CREATE TABLE IF NOT EXISTS MessageTemplates (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		channelConfigId INT NOT NULL,
		triggerStatus VARCHAR(20) NOT NULL,
		content TEXT NOT NULL,
		isActive TINYINT(1) NOT NULL DEFAULT 1,
		isDefault TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_config_status (channelConfigId, triggerStatus)
	)`

	createMessageLogsTable := `
	CREATE TABLE IF NOT EXISTS MessageLogs (
		id CHAR(36) NOT NULL PRIMARY KEY,
		channelConfigId INT NOT NULL,
		destination VARCHAR(150) NOT NULL,
		message TEXT NOT NULL,
		status VARCHAR(10) NOT NULL,
		errorText TEXT,
		orderNumber VARCHAR(30),
		createdAt DATETIME NOT NULL,
		INDEX idx_config (channelConfigId),
		INDEX idx_order_number (orderNumber)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Companies", createCompaniesTable},
		{"Stores", createStoresTable},
		{"Clients", createClientsTable},
		{"Orders", createOrdersTable},
		{"OrderItems", createOrderItemsTable},
		{"ChannelConfigs", createChannelConfigsTable},
		{"MessageTemplates", createMessageTemplatesTable},
		{"MessageLogs", createMessageLogsTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
