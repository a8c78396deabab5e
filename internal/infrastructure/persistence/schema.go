package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/sirupsen/logrus"
)

// tableDDL holds CREATE TABLE statements keyed by table, created in constants.AllTables order
var tableDDL = map[string]string{
	constants.TableUser: `CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(255) NOT NULL,
	name VARCHAR(255) NULL,
	password_hash VARCHAR(255) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	constants.TableWorkspace: `CREATE TABLE IF NOT EXISTS workspaces (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	created_by BIGINT NULL,
	created_at DATETIME(6) NOT NULL,
	UNIQUE KEY uq_workspaces_name (name),
	CONSTRAINT fk_workspaces_created_by FOREIGN KEY (created_by) REFERENCES users (id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	constants.TableWorkspaceMember: `CREATE TABLE IF NOT EXISTS workspace_members (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	workspace_id BIGINT NOT NULL,
	role `+roleColumnType()+`,
	UNIQUE KEY uq_workspace_member (user_id, workspace_id),
	CONSTRAINT fk_members_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
	CONSTRAINT fk_members_workspace FOREIGN KEY (workspace_id) REFERENCES workspaces (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	constants.TableModel: `CREATE TABLE IF NOT EXISTS models (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	workspace_id BIGINT NOT NULL,
	name VARCHAR(255) NOT NULL,
	slug VARCHAR(255) NOT NULL,
	description TEXT NULL,
	rules JSON NULL,
	created_by BIGINT NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	UNIQUE KEY uq_model_slug_workspace (workspace_id, slug),
	CONSTRAINT fk_models_workspace FOREIGN KEY (workspace_id) REFERENCES workspaces (id) ON DELETE CASCADE,
	CONSTRAINT fk_models_created_by FOREIGN KEY (created_by) REFERENCES users (id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	constants.TableModelField: `CREATE TABLE IF NOT EXISTS model_fields (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	model_id BIGINT NOT NULL,
	name VARCHAR(255) NOT NULL,
	slug VARCHAR(255) NOT NULL,
	data_type VARCHAR(50) NOT NULL,
	is_required BOOLEAN NOT NULL DEFAULT FALSE,
	is_unique BOOLEAN NOT NULL DEFAULT FALSE,
	position INT NOT NULL DEFAULT 0,
	config JSON NULL,
	UNIQUE KEY uq_field_slug_model (model_id, slug),
	CONSTRAINT fk_fields_model FOREIGN KEY (model_id) REFERENCES models (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	constants.TableRecord: `CREATE TABLE IF NOT EXISTS records (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	model_id BIGINT NOT NULL,
	workspace_id BIGINT NOT NULL,
	data JSON NOT NULL,
	created_by BIGINT NULL,
	updated_by BIGINT NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	KEY idx_records_model (model_id, created_at),
	CONSTRAINT fk_records_model FOREIGN KEY (model_id) REFERENCES models (id) ON DELETE CASCADE,
	CONSTRAINT fk_records_workspace FOREIGN KEY (workspace_id) REFERENCES workspaces (id) ON DELETE CASCADE,
	CONSTRAINT fk_records_created_by FOREIGN KEY (created_by) REFERENCES users (id) ON DELETE SET NULL,
	CONSTRAINT fk_records_updated_by FOREIGN KEY (updated_by) REFERENCES users (id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// roleColumnType is the ENUM of workspace roles with the default role
func roleColumnType() string {
	quoted := make([]string, len(constants.WorkspaceRoles))
	for i, r := range constants.WorkspaceRoles {
		quoted[i] = "'" + string(r) + "'"
	}
	return fmt.Sprintf("ENUM(%s) NOT NULL DEFAULT '%s'", strings.Join(quoted, ","), constants.DefaultRole)
}

// Migrate creates every missing table
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, table := range constants.AllTables {
		ddl, ok := tableDDL[table]
		if !ok {
			return fmt.Errorf("no DDL for table %s", table)
		}
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
		logrus.WithField("table", table).Debug("📝 table ready")
	}
	logrus.Info("✅ schema migrated")
	return nil
}
