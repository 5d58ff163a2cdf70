package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/basel-ax/archaeo/internal/app"
	"github.com/basel-ax/archaeo/internal/credential"
	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/i18n"
	"github.com/basel-ax/archaeo/internal/imageloader"
	"github.com/basel-ax/archaeo/internal/lifecycle"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/module"
)

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.ensure(w, r)
	s.renderShell(w, r, sess, http.StatusOK, "")
}

func (s *Server) renderShell(w http.ResponseWriter, r *http.Request, sess *session, status int, notice string) {
	data := s.page(sess)
	data.Notice = notice
	switch data.Credential {
	case app.Checking:
		s.render(w, r, status, "checking", data)
	case app.Gated:
		s.render(w, r, status, "connect", data)
	default:
		s.render(w, r, status, "shell", data)
	}
}

func (s *Server) handleToggleLanguage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.ensure(w, r)
	sess.app.ToggleLanguage()
	redirectHome(w, r)
}

func (s *Server) handleKeyForm(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.ensure(w, r)
	data := s.page(sess)
	data.Refresh = 0
	if id, err := domain.ParseModuleType(r.URL.Query().Get("module")); err == nil && id.CallsAssistant() {
		data.ReturnTo = id
	}
	s.render(w, r, http.StatusOK, "key", data)
}

func (s *Server) handleConnectKey(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.ensure(w, r)
	if err := sess.keyring.Stage(r.PostFormValue("api_key")); err != nil {
		s.renderKeyError(w, r, sess, "")
		return
	}
	if err := sess.app.ConnectKey(r.Context()); err != nil {
		logger.Entry(r.Context()).WithError(err).Warn("connect key")
		s.renderKeyError(w, r, sess, "")
		return
	}
	redirectHome(w, r)
}

func (s *Server) renderKeyError(w http.ResponseWriter, r *http.Request, sess *session, returnTo domain.ModuleType) {
	data := s.page(sess)
	data.Refresh = 0
	data.ReturnTo = returnTo
	data.Notice = data.T.T("connect.desc")
	s.render(w, r, http.StatusBadRequest, "key", data)
}

func (s *Server) handleSelectModule(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.ensure(w, r)
	if err := sess.app.Select(chi.URLParam(r, "id")); err != nil {
		http.NotFound(w, r)
		return
	}
	redirectHome(w, r)
}

// moduleFor resolves the assistant-backed module named in the URL. It writes
// the error response itself and reports false when the request cannot go on.
func (s *Server) moduleFor(w http.ResponseWriter, r *http.Request) (*session, *module.Shell, bool) {
	sess, ok := s.sessions.lookup(r)
	if !ok {
		redirectHome(w, r)
		return nil, nil, false
	}
	id, err := domain.ParseModuleType(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil, nil, false
	}
	m, ok := sess.app.Module(id)
	if !ok {
		http.NotFound(w, r)
		return nil, nil, false
	}
	if sess.app.CredentialState() != app.Ready {
		redirectHome(w, r)
		return nil, nil, false
	}
	return sess, m, true
}

func (s *Server) handleSelectImage(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := s.moduleFor(w, r)
	if !ok {
		return
	}
	log := logger.Entry(r.Context()).WithField("module", m.ID())
	_ = sess.app.Select(string(m.ID()))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+maxFormMemory)
	img, err := s.readImage(r)
	if err != nil {
		log.WithError(err).Info("rejected image")
		s.renderShell(w, r, sess, http.StatusBadRequest, i18n.T(sess.app.Lang(), "error.upload"))
		return
	}
	m.SelectImage(img)
	log.WithField("mime", img.MIMEType()).Debug("image selected")
	redirectHome(w, r)
}

// readImage takes the uploaded file, or else fetches image_url
func (s *Server) readImage(r *http.Request) (domain.EncodedImage, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", err
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		return s.loader.Load(file)
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return "", err
	}

	url := strings.TrimSpace(r.FormValue("image_url"))
	if url == "" || s.fetcher == nil {
		return "", imageloader.ErrNotImage
	}
	return s.fetcher.Fetch(r.Context(), url)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := s.moduleFor(w, r)
	if !ok {
		return
	}
	lang := sess.app.Lang()

	switch m.ID() {
	case domain.ModuleMosaic:
		m.SetContext(r.PostFormValue("context"))
	case domain.ModuleTranslation:
		if target := r.PostFormValue("target"); target != "" {
			if err := m.SetTargetLanguage(target); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	ctx := credential.WithKey(r.Context(), sess.keyring.Key())
	if _, err := m.Act(ctx, lang); err != nil {
		if errors.Is(err, lifecycle.ErrBusy) || errors.Is(err, lifecycle.ErrResultPending) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		logger.Entry(r.Context()).WithError(err).Error("start request")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleReauth(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := s.moduleFor(w, r)
	if !ok {
		return
	}
	if !m.Outcome().PermissionDenied() {
		redirectHome(w, r)
		return
	}

	if key := r.PostFormValue("api_key"); key != "" {
		if err := sess.keyring.Stage(key); err != nil {
			s.renderKeyError(w, r, sess, m.ID())
			return
		}
	}
	err := m.Reauthorize(r.Context(), sess.keyring)
	if errors.Is(err, credential.ErrNoKeyStaged) {
		http.Redirect(w, r, "/key?module="+string(m.ID()), http.StatusSeeOther)
		return
	}
	if err != nil {
		logger.Entry(r.Context()).WithError(err).Warn("reauthorize")
		s.renderKeyError(w, r, sess, m.ID())
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	_, m, ok := s.moduleFor(w, r)
	if !ok {
		return
	}
	m.Dismiss()
	redirectHome(w, r)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	_, m, ok := s.moduleFor(w, r)
	if !ok {
		return
	}
	out := m.Outcome()
	if out.Status != domain.StatusSuccess {
		http.NotFound(w, r)
		return
	}

	if out.Payload.Kind == domain.PayloadText {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(m.ID(), "md"))
		_, _ = w.Write([]byte(out.Payload.Text))
		return
	}

	data, err := out.Payload.Image.Bytes()
	if err != nil {
		logger.Entry(r.Context()).WithError(err).Error("decode result")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	mimeType := out.Payload.Image.MIMEType()
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", attachment(m.ID(), fileExtension(mimeType)))
	_, _ = w.Write(data)
}

func attachment(id domain.ModuleType, ext string) string {
	return fmt.Sprintf("attachment; filename=%q", "archaeo-"+string(id)+"."+ext)
}

func fileExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	}
	return "png"
}
