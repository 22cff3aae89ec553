package migration

import (
	"fmt"
	"strings"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
)

type migrationStep struct {
	Name string
	SQL  string
}

// auditColumns is appended to every mutable table.
const auditColumns = `
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by   TEXT        NOT NULL DEFAULT 'system',
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_by   TEXT        NOT NULL DEFAULT 'system'`

// steps are applied in order and never edited once released; schema
// changes are new steps appended at the end.
var steps = []migrationStep{
	{
		Name: "0001_create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	},
	{
		Name: "0002_create_table_tenants",
		SQL: `CREATE TABLE IF NOT EXISTS tenants (
  id            UUID    PRIMARY KEY DEFAULT gen_random_uuid(),
  name          TEXT    NOT NULL,
  slug          TEXT    NOT NULL UNIQUE,
  contact_email TEXT    NOT NULL DEFAULT '',
  is_active     BOOLEAN NOT NULL DEFAULT TRUE,` + auditColumns + `
);`,
	},
	{
		Name: "0003_create_table_management_users",
		SQL: `CREATE TABLE IF NOT EXISTS management_users (
  id             UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  email          TEXT        NOT NULL UNIQUE,
  full_name      TEXT        NOT NULL,
  password_hash  TEXT        NOT NULL,
  is_super_admin BOOLEAN     NOT NULL DEFAULT FALSE,
  is_active      BOOLEAN     NOT NULL DEFAULT TRUE,
  totp_secret    TEXT        NOT NULL DEFAULT '',
  totp_enabled   BOOLEAN     NOT NULL DEFAULT FALSE,
  last_login_at  TIMESTAMPTZ,` + auditColumns + `
);`,
	},
	{
		Name: "0004_create_table_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS permissions (
  code        TEXT PRIMARY KEY,
  description TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "0005_create_table_roles",
		SQL: `CREATE TABLE IF NOT EXISTS roles (
  id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id   UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  name        TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',` + auditColumns + `,
  UNIQUE (tenant_id, name),
  UNIQUE (tenant_id, id)
);`,
	},
	{
		Name: "0006_create_table_role_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS role_permissions (
  role_id         UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
  permission_code TEXT NOT NULL REFERENCES permissions(code) ON DELETE CASCADE,
  PRIMARY KEY (role_id, permission_code)
);`,
	},
	{
		Name: "0007_create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id     UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  email         TEXT        NOT NULL,
  full_name     TEXT        NOT NULL,
  password_hash TEXT        NOT NULL,
  role_id       UUID,
  is_active     BOOLEAN     NOT NULL DEFAULT TRUE,
  totp_secret   TEXT        NOT NULL DEFAULT '',
  totp_enabled  BOOLEAN     NOT NULL DEFAULT FALSE,
  last_login_at TIMESTAMPTZ,` + auditColumns + `,
  UNIQUE (tenant_id, email),
  UNIQUE (tenant_id, id),
  FOREIGN KEY (tenant_id, role_id) REFERENCES roles (tenant_id, id)
);`,
	},
	{
		Name: "0008_create_table_commercial_registrations",
		SQL: `CREATE TABLE IF NOT EXISTS commercial_registrations (
  id                 UUID    PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id          UUID    NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  cr_national_number TEXT    NOT NULL,
  cr_number          TEXT    NOT NULL DEFAULT '',
  name               TEXT    NOT NULL,
  entity_type        TEXT    NOT NULL DEFAULT '',
  status             TEXT    NOT NULL DEFAULT '',
  city               TEXT    NOT NULL DEFAULT '',
  capital            NUMERIC(20, 2),
  issue_date         DATE,
  expiry_date        DATE,
  payload            JSONB   NOT NULL DEFAULT '{}'::jsonb,
  fetched_at         TIMESTAMPTZ,` + auditColumns + `,
  UNIQUE (tenant_id, cr_national_number),
  UNIQUE (tenant_id, id)
);`,
	},
	{
		Name: "0009_create_table_real_estate_deeds",
		SQL: `CREATE TABLE IF NOT EXISTS real_estate_deeds (
  id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id     UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  deed_number   TEXT NOT NULL,
  owner_id      TEXT NOT NULL,
  owner_id_type TEXT NOT NULL CHECK (owner_id_type IN ('national_id', 'iqama', 'cr')),
  deed_date     DATE,
  status        TEXT NOT NULL DEFAULT '',
  region        TEXT NOT NULL DEFAULT '',
  city          TEXT NOT NULL DEFAULT '',
  district      TEXT NOT NULL DEFAULT '',
  area          NUMERIC(14, 2),
  payload       JSONB NOT NULL DEFAULT '{}'::jsonb,
  fetched_at    TIMESTAMPTZ,` + auditColumns + `,
  UNIQUE (tenant_id, deed_number)
);`,
	},
	{
		Name: "0010_create_table_powers_of_attorney",
		SQL: `CREATE TABLE IF NOT EXISTS powers_of_attorney (
  id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id      UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  code           TEXT NOT NULL,
  status         TEXT NOT NULL DEFAULT '',
  principal_id   TEXT NOT NULL DEFAULT '',
  principal_name TEXT NOT NULL DEFAULT '',
  agent_id       TEXT NOT NULL DEFAULT '',
  agent_name     TEXT NOT NULL DEFAULT '',
  issue_date     DATE,
  expiry_date    DATE,
  payload        JSONB NOT NULL DEFAULT '{}'::jsonb,
  fetched_at     TIMESTAMPTZ,` + auditColumns + `,
  UNIQUE (tenant_id, code)
);`,
	},
	{
		Name: "0011_create_table_employees",
		SQL: `CREATE TABLE IF NOT EXISTS employees (
  id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id       UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  national_id     TEXT NOT NULL,
  full_name       TEXT NOT NULL,
  nationality     TEXT NOT NULL DEFAULT '',
  employer_number TEXT NOT NULL DEFAULT '',
  employer_name   TEXT NOT NULL DEFAULT '',
  job_title       TEXT NOT NULL DEFAULT '',
  basic_salary    NUMERIC(14, 2),
  start_date      DATE,
  payload         JSONB NOT NULL DEFAULT '{}'::jsonb,
  fetched_at      TIMESTAMPTZ,` + auditColumns + `,
  UNIQUE (tenant_id, national_id),
  UNIQUE (tenant_id, id)
);`,
	},
	{
		Name: "0012_create_table_national_addresses",
		SQL: `CREATE TABLE IF NOT EXISTS national_addresses (
  id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id         UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  national_id       TEXT NOT NULL,
  building_number   TEXT NOT NULL DEFAULT '',
  street            TEXT NOT NULL DEFAULT '',
  district          TEXT NOT NULL DEFAULT '',
  city              TEXT NOT NULL DEFAULT '',
  postal_code       TEXT NOT NULL DEFAULT '',
  additional_number TEXT NOT NULL DEFAULT '',
  short_address     TEXT NOT NULL DEFAULT '',
  latitude          NUMERIC(10, 7),
  longitude         NUMERIC(10, 7),
  payload           JSONB NOT NULL DEFAULT '{}'::jsonb,
  fetched_at        TIMESTAMPTZ,` + auditColumns + `,
  UNIQUE (tenant_id, national_id)
);`,
	},
	{
		Name: "0013_create_table_contracts",
		SQL: `CREATE TABLE IF NOT EXISTS contracts (
  id                         UUID           PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id                  UUID           NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  contract_number            TEXT           NOT NULL,
  employee_id                UUID           NOT NULL,
  commercial_registration_id UUID,
  title                      TEXT           NOT NULL DEFAULT '',
  start_date                 DATE           NOT NULL,
  end_date                   DATE,
  value                      NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (value >= 0),
  currency                   TEXT           NOT NULL DEFAULT 'SAR',
  status                     TEXT           NOT NULL DEFAULT 'draft'
                             CHECK (status IN ('draft', 'active', 'expired', 'terminated')),
  notes                      TEXT           NOT NULL DEFAULT '',` + auditColumns + `,
  UNIQUE (tenant_id, contract_number),
  CHECK (end_date IS NULL OR end_date >= start_date),
  FOREIGN KEY (tenant_id, employee_id) REFERENCES employees (tenant_id, id),
  FOREIGN KEY (tenant_id, commercial_registration_id) REFERENCES commercial_registrations (tenant_id, id)
);`,
	},
	{
		Name: "0014_create_table_wathq_cache",
		SQL: `CREATE TABLE IF NOT EXISTS wathq_cache (
  id          UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id   UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  service     TEXT        NOT NULL,
  cache_key   TEXT        NOT NULL,
  status_code INTEGER     NOT NULL,
  body        JSONB       NOT NULL,
  expires_at  TIMESTAMPTZ NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (tenant_id, cache_key)
);
CREATE INDEX IF NOT EXISTS idx_wathq_cache_expires_at ON wathq_cache (expires_at);`,
	},
	{
		Name: "0015_create_table_wathq_call_logs",
		SQL: `CREATE TABLE IF NOT EXISTS wathq_call_logs (
  id             UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id      UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  user_id        TEXT        NOT NULL,
  service        TEXT        NOT NULL,
  method         TEXT        NOT NULL,
  endpoint       TEXT        NOT NULL,
  cache_key      TEXT        NOT NULL,
  cache_hit      BOOLEAN     NOT NULL DEFAULT FALSE,
  source         TEXT        NOT NULL DEFAULT '',
  request_params JSONB       NOT NULL DEFAULT '{}'::jsonb,
  status_code    INTEGER     NOT NULL DEFAULT 0,
  response_body  JSONB,
  error_message  TEXT        NOT NULL DEFAULT '',
  duration_ms    BIGINT      NOT NULL DEFAULT 0,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_wathq_call_logs_tenant_created ON wathq_call_logs (tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_wathq_call_logs_service ON wathq_call_logs (tenant_id, service);`,
	},
	{
		Name: "0016_create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id  UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  user_id    UUID        NOT NULL,
  type       TEXT        NOT NULL,
  title      TEXT        NOT NULL,
  body       TEXT        NOT NULL DEFAULT '',
  link       TEXT        NOT NULL DEFAULT '',
  is_read    BOOLEAN     NOT NULL DEFAULT FALSE,
  read_at    TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  FOREIGN KEY (tenant_id, user_id) REFERENCES users (tenant_id, id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (tenant_id, user_id, is_read, created_at DESC);`,
	},
	{
		Name: "0017_create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id           UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id    UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  record_type  TEXT        NOT NULL,
  record_id    UUID        NOT NULL,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by   TEXT        NOT NULL DEFAULT 'system'
);
CREATE INDEX IF NOT EXISTS idx_reports_tenant_created ON reports (tenant_id, created_at DESC);`,
	},
	{
		Name: "0018_seed_permissions",
		SQL:  seedPermissionsSQL(model.PermissionCatalogue),
	},
}

func seedPermissionsSQL(perms []model.Permission) string {
	var b strings.Builder
	b.WriteString("INSERT INTO permissions (code, description) VALUES\n")
	for i, p := range perms {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  (%s, %s)", quote(p.Code), quote(p.Description))
	}
	b.WriteString("\nON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description;")
	return b.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
