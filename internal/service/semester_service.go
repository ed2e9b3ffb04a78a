package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/calendar"
	"github.com/Monopich/AIST-Backend-sub000/internal/dto"
	"github.com/Monopich/AIST-Backend-sub000/internal/model"
	"github.com/Monopich/AIST-Backend-sub000/internal/repository"
	pkgerrors "github.com/Monopich/AIST-Backend-sub000/pkg/errors"
)

// ── 学期模块业务错误 ──

var (
	ErrInvalidSemesterDates    = errors.New("学期开始日期不能晚于结束日期")
	ErrSemesterHasSlotsOutside = errors.New("已有课时落在新的学期日期范围之外")
)

// SemesterService 学期业务接口
type SemesterService interface {
	Create(ctx context.Context, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error)
	List(ctx context.Context, req *dto.SemesterListRequest) ([]dto.SemesterResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// ListWeeks 学期窗口的周次切分
	ListWeeks(ctx context.Context, id string) ([]dto.WeekRangeResponse, error)
}

type semesterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	window, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	semester := &model.Semester{
		ProgramID: req.ProgramID,
		Name:      req.Name,
		StartDate: window.Start,
		EndDate:   window.End,
		IsActive:  req.IsActive,
	}
	semester.CreatedBy = &callerID
	semester.UpdatedBy = &callerID

	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── Query ──────────────────────

func (s *semesterService) GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error) {
	semester, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSemesterResponse(semester), nil
}

func (s *semesterService) List(ctx context.Context, req *dto.SemesterListRequest) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx, req.ProgramID)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *toSemesterResponse(&semesters[i]))
	}
	return result, nil
}

func (s *semesterService) ListWeeks(ctx context.Context, id string) ([]dto.WeekRangeResponse, error) {
	semester, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	window, err := semester.Window()
	if err != nil {
		return nil, ErrInvalidSemesterDates
	}

	weeks := window.Weeks()
	result := make([]dto.WeekRangeResponse, 0, len(weeks))
	for _, w := range weeks {
		result = append(result, dto.WeekRangeResponse{
			WeekNumber:     w.Number,
			WeekStart:      w.Start.String(),
			WeekEnd:        w.End.String(),
			DaysInSemester: w.DaysIn(window),
		})
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *semesterService) Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	var semester *model.Semester
	err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		var err error
		semester, err = tx.Semester.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSemesterNotFound
			}
			return err
		}
		if req.Version > 0 && req.Version != semester.Version {
			return pkgerrors.ErrOptimisticLock
		}

		start, end := semester.StartDate.String(), semester.EndDate.String()
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		window, err := parseWindow(start, end)
		if err != nil {
			return err
		}

		// 收窄窗口时不得遗留窗口外的课时
		if !window.Start.Equal(semester.StartDate) || !window.End.Equal(semester.EndDate) {
			if err := tx.TimeSlot.LockForScheduling(ctx); err != nil {
				return err
			}
			outside, err := tx.TimeSlot.CountOutsideWindow(ctx, id, window.Start, window.End)
			if err != nil {
				return err
			}
			if outside > 0 {
				return ErrSemesterHasSlotsOutside
			}
		}

		semester.StartDate = window.Start
		semester.EndDate = window.End
		if req.Name != nil {
			semester.Name = *req.Name
		}
		if req.IsActive != nil {
			semester.IsActive = *req.IsActive
		}
		semester.UpdatedBy = &callerID

		return tx.Semester.Update(ctx, semester)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Semester.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *semesterService) get(ctx context.Context, id string) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return semester, nil
}

func parseWindow(start, end string) (calendar.Window, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return calendar.Window{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return calendar.Window{}, err
	}
	window, err := calendar.NewWindow(startDate, endDate)
	if err != nil {
		return calendar.Window{}, ErrInvalidSemesterDates
	}
	return window, nil
}

func toSemesterResponse(semester *model.Semester) *dto.SemesterResponse {
	resp := &dto.SemesterResponse{
		ID:        semester.SemesterID,
		ProgramID: semester.ProgramID,
		Name:      semester.Name,
		StartDate: semester.StartDate.String(),
		EndDate:   semester.EndDate.String(),
		IsActive:  semester.IsActive,
		Version:   semester.Version,
		CreatedAt: formatTime(semester.CreatedAt),
		UpdatedAt: formatTime(semester.UpdatedAt),
	}
	if window, err := semester.Window(); err == nil {
		resp.DurationDays = window.DurationDays()
		resp.TotalWeeks = len(window.Weeks())
	}
	return resp
}
