package clientstore

const (
	createSchema = `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT    NOT NULL,
			key        TEXT    NOT NULL,
			doc        TEXT    NOT NULL,
			base       TEXT,
			deleted    INTEGER NOT NULL DEFAULT 0,
			dirty      INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (collection, key)
		);

		CREATE TABLE IF NOT EXISTS checkpoints (
			collection       TEXT PRIMARY KEY,
			key              TEXT NOT NULL,
			server_timestamp TEXT NOT NULL
		);`

	applyRemoteDocument = `
		INSERT INTO documents (collection, key, doc, base, deleted, dirty)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT (collection, key) DO UPDATE SET
			doc     = excluded.doc,
			base    = excluded.base,
			deleted = excluded.deleted,
			dirty   = 0;`

	saveLocalDocument = `
		INSERT INTO documents (collection, key, doc, base, deleted, dirty)
		VALUES (?, ?, ?, NULL, ?, 1)
		ON CONFLICT (collection, key) DO UPDATE SET
			doc     = excluded.doc,
			deleted = excluded.deleted,
			dirty   = 1;`

	getSingleDocument = `
		SELECT doc, deleted
		FROM documents
		WHERE collection = ? AND key = ?;`

	getAllDocuments = `
		SELECT doc, deleted
		FROM documents
		WHERE collection = ? AND deleted = 0
		ORDER BY key;`

	getDirtyDocuments = `
		SELECT doc, base, deleted
		FROM documents
		WHERE collection = ? AND dirty = 1
		ORDER BY key;`

	markDocumentClean = `
		UPDATE documents
		SET dirty = 0, base = doc
		WHERE collection = ? AND key = ?;`

	saveCheckpoint = `
		INSERT INTO checkpoints (collection, key, server_timestamp)
		VALUES (?, ?, ?)
		ON CONFLICT (collection) DO UPDATE SET
			key              = excluded.key,
			server_timestamp = excluded.server_timestamp;`

	getCheckpoint = `
		SELECT key, server_timestamp
		FROM checkpoints
		WHERE collection = ?;`
)
