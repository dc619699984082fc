package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
)

// readUpload devuelve el archivo del campo "file" de un formulario multipart.
// El llamador debe cerrarlo.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(h.config.Server.MaxUploadSize); err != nil {
		return nil, nil, errors.New("no se pudo leer el formulario o el archivo es demasiado grande")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("falta el archivo en el campo file")
	}

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		file.Close()
		return nil, nil, errors.New("solo se aceptan archivos CSV")
	}

	return file, header, nil
}
