package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/submission"
	"github.com/labstack/echo/v4"
)

// readSubmission decodes a JSON or multipart body into record. Multipart
// file parts are checked against set's slots; only their metadata is kept.
func readSubmission(c echo.Context, record any, set *attachment.Set) (submission.Encoding, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		if err := c.Echo().JSONSerializer.Deserialize(c, record); err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
		}
		return submission.EncodingJSON, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid multipart body").SetInternal(err)
	}
	raw := form.Value[submission.RecordField]
	if len(raw) == 0 {
		return "", echo.NewHTTPError(http.StatusBadRequest, submission.RecordField+" field is required")
	}
	if err := json.Unmarshal([]byte(raw[0]), record); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid "+submission.RecordField+" field").SetInternal(err)
	}

	for field, headers := range form.File {
		for _, fh := range headers {
			err := set.Accept(field, attachment.File{
				Name:        fh.Filename,
				ContentType: fh.Header.Get(echo.HeaderContentType),
				Size:        fh.Size,
			})
			switch {
			case errors.Is(err, attachment.ErrUnknownSlot):
				return "", echo.NewHTTPError(http.StatusBadRequest, "unknown file field "+field)
			case err != nil:
				return "", err
			}
		}
	}
	return submission.EncodingMultipart, nil
}

func parseID(c echo.Context, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return uint(id), nil
}
