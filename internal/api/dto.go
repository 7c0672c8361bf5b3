package api

import "github.com/starford/procyon/internal/catalogservice"

// OpenCatalogRequest selects the catalog file to open or create.
type OpenCatalogRequest struct {
	Path string `json:"path"`
}

// CreateFolderRequest is the request body for creating a folder.
type CreateFolderRequest struct {
	ParentID int64  `json:"parent_id"`
	Title    string `json:"title"`
}

// RenameFolderRequest is the request body for renaming a folder.
type RenameFolderRequest struct {
	Title string `json:"title"`
}

// CreateMemoRequest is the request body for creating a memo.
type CreateMemoRequest struct {
	ParentID int64  `json:"parent_id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Text     string `json:"text"`
}

// UpdateMemoRequest is the request body for updating a memo. The memo type
// is immutable and therefore absent.
type UpdateMemoRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// DeleteFolderResponse reports the memo ids removed with the folder, for
// client-side cleanup of open editors.
type DeleteFolderResponse struct {
	RemovedMemoIDs []int64 `json:"removed_memo_ids"`
}

// Domain response types aliased from the service layer.
type (
	CatalogInfo  = catalogservice.CatalogInfo
	ItemNode     = catalogservice.ItemNode
	MemoDetail   = catalogservice.MemoDetail
	FolderDetail = catalogservice.FolderDetail
)
