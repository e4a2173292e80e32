package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mood-diary/src/domain"
	"mood-diary/src/notify"

	"github.com/sirupsen/logrus"
)

// フラッシュメッセージ
const (
	MsgSaved           = "記録を保存しました"
	MsgDeleted         = "記録を削除しました"
	MsgNothingToDelete = "削除する記録はありません"
	MsgPhotoRemoved    = "写真を削除しました"
	MsgNoPhoto         = "削除できる写真がありません"
	MsgDateMissing     = "日付を入力してください"
	MsgDateInvalid     = "日付の形式が正しくありません"
	MsgEmptyContent    = "気分・メモ・写真のいずれか1つは入力してください"
	MsgInvalidMood     = "選択された気分が見つかりません"
	MsgInvalidPhoto    = "画像ファイルを選択してください"
	MsgSaveFailed      = "記録の保存に失敗しました"
	MsgDeleteFailed    = "記録の削除に失敗しました"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// SubmitRecordInput is the typed payload of a record form submission
type SubmitRecordInput struct {
	UserID       int
	Date         string
	MoodID       *int
	Note         *string
	Photo        *domain.PhotoUpload
	RemovePhoto  bool
	DeleteRecord bool
	// FullForm is set when the mood/note fields were submitted along with the flags
	FullForm bool
}

// RecordForm holds the submitted values so a rejected form can be redisplayed
type RecordForm struct {
	Date   string `json:"date"`
	MoodID *int   `json:"mood_id"`
	Note   string `json:"note"`
}

// ValidationError is a rejected submission; nothing was persisted
type ValidationError struct {
	Kind error
	Err  error
	Form RecordForm
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Action is what a reconciliation request ended up doing
type Action string

const (
	ActionCreated      Action = "created"
	ActionUpdated      Action = "updated"
	ActionDeleted      Action = "deleted"
	ActionPhotoRemoved Action = "photo_removed"
	ActionNone         Action = "none"
)

// Outcome is the result of a successful reconciliation request
type Outcome struct {
	Action Action
	Date   string
	Record *domain.DiaryRecord
}

// RecordView is the data needed to show the record form for a day
type RecordView struct {
	Date         string
	Record       *domain.DiaryRecord
	Moods        []domain.MoodCategory
	SelectedMood *domain.MoodCategory
	PhotoURL     string
}

// RecordService defines the interface for diary record business logic
type RecordService interface {
	Submit(ctx context.Context, in SubmitRecordInput) (*Outcome, error)
	DeleteRecord(ctx context.Context, userID int, date string) (*Outcome, error)
	RemovePhoto(ctx context.Context, userID int, date string) (*Outcome, error)
	DeleteRecordByID(ctx context.Context, userID int, id int) (*Outcome, error)
	RemovePhotoByID(ctx context.Context, userID int, id int) (*Outcome, error)
	GetRecord(ctx context.Context, userID int, date string) (*RecordView, error)
	ListRecords(ctx context.Context, userID int, limit, offset int) ([]domain.DiaryRecord, int, error)
	PhotoURL(rec *domain.DiaryRecord) string
}

type recordService struct {
	records        domain.RecordRepository
	moods          MoodCatalog
	blobs          domain.BlobStore
	logger         *logrus.Logger
	maxUploadBytes int64
}

// NewRecordService creates a new record service
func NewRecordService(records domain.RecordRepository, moods MoodCatalog, blobs domain.BlobStore, logger *logrus.Logger, maxUploadBytes int64) RecordService {
	return &recordService{
		records:        records,
		moods:          moods,
		blobs:          blobs,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Submit dispatches a form submission: delete, remove photo, or full save
func (s *recordService) Submit(ctx context.Context, in SubmitRecordInput) (*Outcome, error) {
	switch {
	case in.DeleteRecord:
		return s.DeleteRecord(ctx, in.UserID, in.Date)
	case in.RemovePhoto && !in.FullForm:
		return s.RemovePhoto(ctx, in.UserID, in.Date)
	default:
		return s.save(ctx, in)
	}
}

func (s *recordService) save(ctx context.Context, in SubmitRecordInput) (*Outcome, error) {
	flash := notify.FromContext(ctx)

	form := RecordForm{Date: strings.TrimSpace(in.Date), MoodID: in.MoodID}
	if in.Note != nil {
		form.Note = *in.Note
	}

	date, err := domain.ParseEntryDate(in.Date)
	if err != nil {
		return nil, s.invalid(flash, domain.ErrInvalidDate, err, form)
	}

	if in.MoodID != nil {
		if _, err := s.moods.Get(ctx, *in.MoodID); err != nil {
			if errors.Is(err, domain.ErrInvalidMood) {
				return nil, s.invalid(flash, domain.ErrInvalidMood, err, form)
			}
			return nil, s.failed(flash, MsgSaveFailed, "気分カテゴリの取得に失敗", err)
		}
	}
	note := strings.TrimSpace(form.Note)

	existing, err := s.records.GetByDate(ctx, in.UserID, date)
	if err != nil {
		return nil, s.failed(flash, MsgSaveFailed, "既存記録の取得に失敗", err)
	}

	var upload *domain.PhotoUpload
	if in.Photo != nil && !in.RemovePhoto {
		upload, err = inspectPhoto(in.Photo, s.maxUploadBytes)
		if err != nil {
			return nil, s.invalid(flash, domain.ErrInvalidPhoto, err, form)
		}
	}

	keepsPhoto := upload != nil || (existing.HasPhoto() && !in.RemovePhoto)
	if in.MoodID == nil && note == "" && !keepsPhoto {
		return nil, s.invalid(flash, domain.ErrEmptyContent, domain.ErrEmptyContent, form)
	}

	upsert := domain.RecordUpsert{
		UserID:      in.UserID,
		EntryDate:   date,
		MoodID:      in.MoodID,
		Note:        note,
		PhotoChange: domain.PhotoKeep,
	}

	var newRef string
	switch {
	case in.RemovePhoto:
		upsert.PhotoChange = domain.PhotoClear
	case upload != nil:
		// 新しい写真を先に保存し、記録の更新後に古い写真を解放する
		newRef, err = s.blobs.Store(ctx, upload)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidPhoto) {
				return nil, s.invalid(flash, domain.ErrInvalidPhoto, err, form)
			}
			return nil, s.failed(flash, MsgSaveFailed, "写真の保存に失敗", err)
		}
		upsert.PhotoChange = domain.PhotoSet
		upsert.Photo = &newRef
	}

	rec, err := s.upsert(ctx, upsert)
	if err != nil {
		if newRef != "" {
			s.releaseBlob(ctx, newRef)
		}
		return nil, s.failed(flash, MsgSaveFailed, "記録の保存に失敗", err)
	}

	if existing.HasPhoto() {
		old := *existing.Photo
		if upsert.PhotoChange == domain.PhotoClear || (upsert.PhotoChange == domain.PhotoSet && old != newRef) {
			s.releaseBlob(ctx, old)
		}
	}

	action := ActionUpdated
	if existing == nil {
		action = ActionCreated
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   in.UserID,
		"record_id": rec.ID,
		"date":      domain.FormatDate(date),
		"action":    action,
	}).Info("記録を保存しました")

	flash.Success(MsgSaved)
	return &Outcome{Action: action, Date: domain.FormatDate(date), Record: rec}, nil
}

// upsert retries once as an update when a racing insert won
func (s *recordService) upsert(ctx context.Context, upsert domain.RecordUpsert) (*domain.DiaryRecord, error) {
	rec, err := s.records.Upsert(ctx, upsert)
	if errors.Is(err, domain.ErrUniquenessConflict) {
		s.logger.WithFields(logrus.Fields{
			"user_id": upsert.UserID,
			"date":    domain.FormatDate(upsert.EntryDate),
		}).Warn("一意制約の競合を検出、更新として再試行します")
		rec, err = s.records.Upsert(ctx, upsert)
	}
	return rec, err
}

// DeleteRecord deletes the record for the date; an absent record is a no-op
func (s *recordService) DeleteRecord(ctx context.Context, userID int, date string) (*Outcome, error) {
	flash := notify.FromContext(ctx)

	// 解釈できない日付は記録なしとして扱う
	d, err := domain.ParseEntryDate(date)
	if err != nil {
		flash.Info(MsgNothingToDelete)
		return &Outcome{Action: ActionNone, Date: strings.TrimSpace(date)}, nil
	}

	existing, err := s.records.GetByDate(ctx, userID, d)
	if err != nil {
		return nil, s.failed(flash, MsgDeleteFailed, "記録の取得に失敗", err)
	}
	if existing == nil {
		flash.Info(MsgNothingToDelete)
		return &Outcome{Action: ActionNone, Date: domain.FormatDate(d)}, nil
	}

	outcome, err := s.deleteRecord(ctx, existing)
	if errors.Is(err, domain.ErrNotFound) {
		// 取得後に別のリクエストで削除された
		flash.Info(MsgNothingToDelete)
		return &Outcome{Action: ActionNone, Date: domain.FormatDate(d)}, nil
	}
	return outcome, err
}

// DeleteRecordByID deletes a record owned by the user
func (s *recordService) DeleteRecordByID(ctx context.Context, userID int, id int) (*Outcome, error) {
	existing, err := s.records.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupFailed(ctx, MsgDeleteFailed, err)
	}
	return s.deleteRecord(ctx, existing)
}

// deleteRecord removes the row first, then releases the photo it referenced
func (s *recordService) deleteRecord(ctx context.Context, existing *domain.DiaryRecord) (*Outcome, error) {
	flash := notify.FromContext(ctx)

	deleted, err := s.records.Delete(ctx, existing.UserID, existing.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, s.failed(flash, MsgDeleteFailed, "記録の削除に失敗", err)
	}
	if deleted.HasPhoto() {
		s.releaseBlob(ctx, *deleted.Photo)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   deleted.UserID,
		"record_id": deleted.ID,
		"date":      domain.FormatDate(deleted.EntryDate),
	}).Info("記録を削除しました")

	flash.Success(MsgDeleted)
	return &Outcome{Action: ActionDeleted, Date: domain.FormatDate(deleted.EntryDate), Record: deleted}, nil
}

// RemovePhoto detaches and releases the photo of the record for the date
func (s *recordService) RemovePhoto(ctx context.Context, userID int, date string) (*Outcome, error) {
	flash := notify.FromContext(ctx)

	d, err := domain.ParseEntryDate(date)
	if err != nil {
		flash.Info(MsgNoPhoto)
		return &Outcome{Action: ActionNone, Date: strings.TrimSpace(date)}, nil
	}

	existing, err := s.records.GetByDate(ctx, userID, d)
	if err != nil {
		return nil, s.failed(flash, MsgDeleteFailed, "記録の取得に失敗", err)
	}
	if existing == nil {
		flash.Info(MsgNoPhoto)
		return &Outcome{Action: ActionNone, Date: domain.FormatDate(d)}, nil
	}
	return s.removePhoto(ctx, existing)
}

// RemovePhotoByID detaches the photo of a record owned by the user
func (s *recordService) RemovePhotoByID(ctx context.Context, userID int, id int) (*Outcome, error) {
	existing, err := s.records.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupFailed(ctx, MsgDeleteFailed, err)
	}
	return s.removePhoto(ctx, existing)
}

func (s *recordService) removePhoto(ctx context.Context, existing *domain.DiaryRecord) (*Outcome, error) {
	flash := notify.FromContext(ctx)
	date := domain.FormatDate(existing.EntryDate)

	if !existing.HasPhoto() {
		flash.Info(MsgNoPhoto)
		return &Outcome{Action: ActionNone, Date: date, Record: existing}, nil
	}

	// 写真が唯一の内容なら記録ごと削除する
	if existing.MoodID == nil && existing.Note == "" {
		deleted, err := s.records.Delete(ctx, existing.UserID, existing.ID)
		if err != nil {
			return nil, s.lookupFailed(ctx, MsgDeleteFailed, err)
		}
		if deleted.HasPhoto() {
			s.releaseBlob(ctx, *deleted.Photo)
		}
		s.logger.WithFields(logrus.Fields{
			"user_id":   deleted.UserID,
			"record_id": deleted.ID,
			"date":      date,
		}).Info("内容がなくなった記録を削除しました")
		flash.Success(MsgPhotoRemoved)
		return &Outcome{Action: ActionDeleted, Date: date, Record: deleted}, nil
	}

	rec, err := s.records.ClearPhoto(ctx, existing.UserID, existing.ID)
	if err != nil {
		return nil, s.lookupFailed(ctx, MsgDeleteFailed, err)
	}
	s.releaseBlob(ctx, *existing.Photo)

	s.logger.WithFields(logrus.Fields{
		"user_id":   rec.UserID,
		"record_id": rec.ID,
		"date":      date,
	}).Info("写真を削除しました")
	flash.Success(MsgPhotoRemoved)
	return &Outcome{Action: ActionPhotoRemoved, Date: date, Record: rec}, nil
}

// GetRecord returns the record form data for the date
func (s *recordService) GetRecord(ctx context.Context, userID int, date string) (*RecordView, error) {
	d, err := domain.ParseEntryDate(date)
	if err != nil {
		return nil, &ValidationError{Kind: domain.ErrInvalidDate, Err: err, Form: RecordForm{Date: strings.TrimSpace(date)}}
	}

	moods, err := s.moods.ListOrdered(ctx)
	if err != nil {
		return nil, persistence("気分カテゴリの取得に失敗", err)
	}
	rec, err := s.records.GetByDate(ctx, userID, d)
	if err != nil {
		return nil, persistence("記録の取得に失敗", err)
	}

	view := &RecordView{Date: domain.FormatDate(d), Record: rec, Moods: moods}
	if rec != nil {
		view.PhotoURL = s.PhotoURL(rec)
		if rec.MoodID != nil {
			for i := range moods {
				if moods[i].ID == *rec.MoodID {
					view.SelectedMood = &moods[i]
					break
				}
			}
		}
	}
	return view, nil
}

// ListRecords returns the user's records, newest date first
func (s *recordService) ListRecords(ctx context.Context, userID int, limit, offset int) ([]domain.DiaryRecord, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.records.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, persistence("記録一覧の取得に失敗", err)
	}
	return records, total, nil
}

// PhotoURL returns the display URL of the record's photo, or ""
func (s *recordService) PhotoURL(rec *domain.DiaryRecord) string {
	if !rec.HasPhoto() {
		return ""
	}
	return s.blobs.URL(*rec.Photo)
}

// releaseBlob deletes a blob; failures are logged and never fail the request
func (s *recordService) releaseBlob(ctx context.Context, ref string) {
	if err := s.blobs.Delete(ctx, ref); err != nil {
		s.logger.WithError(err).WithField("photo", ref).Warn("写真の削除に失敗しました")
	}
}

func (s *recordService) invalid(flash notify.Notifier, kind, err error, form RecordForm) error {
	switch {
	case domain.IsDateMissing(err):
		flash.Error(MsgDateMissing)
	case errors.Is(kind, domain.ErrInvalidDate):
		flash.Error(MsgDateInvalid)
	case errors.Is(kind, domain.ErrInvalidMood):
		flash.Error(MsgInvalidMood)
	case errors.Is(kind, domain.ErrInvalidPhoto):
		flash.Error(MsgInvalidPhoto)
	case errors.Is(kind, domain.ErrEmptyContent):
		flash.Error(MsgEmptyContent)
	}
	return &ValidationError{Kind: kind, Err: err, Form: form}
}

func (s *recordService) failed(flash notify.Notifier, msg, op string, err error) error {
	s.logger.WithError(err).Error(op)
	flash.Error(msg)
	return persistence(op, err)
}

// lookupFailed passes ErrNotFound through and treats anything else as a storage failure
func (s *recordService) lookupFailed(ctx context.Context, msg string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.failed(notify.FromContext(ctx), msg, "記録の操作に失敗", err)
}

func persistence(op string, err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}
