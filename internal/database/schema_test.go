package database

import (
	"io/fs"
	"strings"
	"testing"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := fs.ReadFile(embedMigrations, migrationsDir+"/"+name)
	if err != nil {
		t.Fatalf("Failed to read migration file %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	expectedMigrations := []string{
		"00001_create_products_table.sql",
		"00002_create_orders_table.sql",
		"00003_create_order_items_table.sql",
		"00004_create_profiles_table.sql",
		"00005_create_admin_users_table.sql",
	}

	for _, migration := range expectedMigrations {
		if _, err := fs.Stat(embedMigrations, migrationsDir+"/"+migration); err != nil {
			t.Errorf("Migration file %s is not embedded: %v", migration, err)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := fs.ReadDir(embedMigrations, migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		sqlFileCount++
		contentStr := readMigration(t, file.Name())

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"products":    "00001_create_products_table.sql",
		"orders":      "00002_create_orders_table.sql",
		"order_items": "00003_create_order_items_table.sql",
		"profiles":    "00004_create_profiles_table.sql",
		"admin_users": "00005_create_admin_users_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		contentStr := readMigration(t, migrationFile)

		if !strings.Contains(contentStr, "CREATE TABLE IF NOT EXISTS "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(contentStr, "DROP TABLE IF EXISTS "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestOrdersTableConstrainsStatusAndMethod(t *testing.T) {
	contentStr := readMigration(t, "00002_create_orders_table.sql")

	for _, fragment := range []string{
		"status IN ('placed', 'paid', 'shipped', 'delivered', 'cancelled')",
		"payment_method IN ('COD', 'UPI', 'ONLINE')",
		"total BIGINT NOT NULL CHECK (total > 0)",
		"tg_user_id BIGINT,",
	} {
		if !strings.Contains(contentStr, fragment) {
			t.Errorf("orders migration missing %q", fragment)
		}
	}
}

func TestOrderItemsCascadeWithOrder(t *testing.T) {
	contentStr := readMigration(t, "00003_create_order_items_table.sql")

	if !strings.Contains(contentStr, "REFERENCES orders(id) ON DELETE CASCADE") {
		t.Error("order_items must reference orders with ON DELETE CASCADE")
	}
	if !strings.Contains(contentStr, "CHECK (qty >= 1)") {
		t.Error("order_items must reject quantities below one")
	}
}

func TestAdminEmailIsUnique(t *testing.T) {
	contentStr := readMigration(t, "00005_create_admin_users_table.sql")
	if !strings.Contains(contentStr, "email TEXT UNIQUE NOT NULL") {
		t.Error("admin_users.email must be unique")
	}
}
