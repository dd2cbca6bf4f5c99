// Package http provides the portal's HTTP adapters built on chi.
//
// Admin routes mount under /admin/api and require an authenticated actor:
//   - Content: /content, /content/{id}, /content/pending/count
//   - Lifecycle: /content/{id}/submit, /approve, /reject, /unpublish, /events
//   - Bulk and import: /content/bulk-delete, /content/import
//
// Public routes mount under /api and only ever expose published items:
//   - /content, /content/{id}
//
// Host applications can mount either API on their own chi router.
package http
