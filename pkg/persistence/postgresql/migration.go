package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE process_groups (
				id VARCHAR(512) PRIMARY KEY,
				parent_id VARCHAR(512) NOT NULL DEFAULT '',
				display_name VARCHAR(255) NOT NULL,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_process_groups_parent_id ON process_groups(parent_id);
			CREATE INDEX idx_process_groups_display_name ON process_groups(display_name);
			CREATE INDEX idx_process_groups_updated_at ON process_groups(updated_at);
		`,
	}
}
