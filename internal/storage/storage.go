package storage

import "mime/multipart"

// Uploader 图片上传后端的统一接口，由配置选择具体实现
type Uploader interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}
