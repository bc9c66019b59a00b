package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/profile"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	// room for the text fields and multipart framing on top of the photo itself.
	multipartOverhead  = 1 << 20
	multipartMemory    = 1 << 20
	profilePhotoField  = "photo"
	removePhotoField   = "removePhoto"
	profileUnavailable = "profile service unavailable"
)

func ProfileGet(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, profileUnavailable))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// ProfileUpdate accepts the multipart profile form with an optional photo file.
func ProfileUpdate(svc profile.Service, maxPhotoBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, profileUnavailable))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, multipartError(err))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		input := profile.UpdateInput{
			Name:     formField(r, "name"),
			Lastname: formField(r, "lastname"),
			Email:    formField(r, "email"),
			Phone:    formField(r, "phone"),
			Gender:   formOptional(r, "gender"),
			Address:  formOptional(r, "address"),
			Country:  formOptional(r, "country"),
			State:    formOptional(r, "state"),
			City:     formOptional(r, "city"),
			Pincode:  formOptional(r, "pincode"),
		}
		if raw := strings.TrimSpace(r.FormValue(removePhotoField)); raw != "" {
			remove, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "removePhoto must be a boolean"))
				return
			}
			input.RemovePhoto = remove
		}

		file, header, err := r.FormFile(profilePhotoField)
		switch {
		case err == nil:
			defer file.Close()
			input.Photo = &profile.PhotoUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		case errors.Is(err, http.ErrMissingFile):
		default:
			responses.WriteError(r.Context(), logg, w, multipartError(err))
			return
		}

		user, err := svc.Update(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func ProfileRemovePhoto(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, profileUnavailable))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.RemovePhoto(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

const maxFormFieldLen = 255

func formField(r *http.Request, key string) string {
	return validators.SanitizeString(r.FormValue(key), maxFormFieldLen)
}

// formOptional distinguishes an absent field (nil) from one sent empty.
func formOptional(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := validators.SanitizeString(values[0], maxFormFieldLen)
	return &v
}

func multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.Wrap(pkgerrors.CodePayloadTooLarge, err, "Photo exceeds the size limit")
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
}
