package dto

// FilesUploadedResponse имена сохраненных файлов в порядке частей запроса
type FilesUploadedResponse struct {
	FileIDs []string `json:"file_ids"`
}
