package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Monopich/AIST-Backend-sub000/config"
	"github.com/Monopich/AIST-Backend-sub000/internal/api/handler"
	"github.com/Monopich/AIST-Backend-sub000/internal/api/middleware"
	"github.com/Monopich/AIST-Backend-sub000/pkg/jwt"
	"github.com/Monopich/AIST-Backend-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 写接口：仅 admin / hod，并按用户限流
	write := []gin.HandlerFunc{
		middleware.RoleAuth("admin", "hod"),
		middleware.RateLimit(rdb, cfg.Schedule.WriteRateLimit, cfg.Schedule.WriteRateWindow),
	}
	guard := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), hf)
	}

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 课表模块
		timetables := v1.Group("/timetables")
		{
			timetables.POST("", guard(h.Timetable.CreateTimetable)...)
			timetables.GET("/:id", h.Timetable.GetTimetable)
			timetables.DELETE("/:id", guard(h.Timetable.DeleteTimetable)...)
			timetables.POST("/:id/slots", guard(h.Timetable.CreateSlots)...)
			timetables.GET("/:id/slots", h.Timetable.ListSlots)
			timetables.POST("/:id/clone-week", guard(h.Timetable.CloneWeek)...)
			timetables.GET("/:id/weeks", h.Timetable.ListWeeks)
			timetables.GET("/:id/weeks/:week_number", h.Timetable.GetWeek)
		}

		// 班级入口（首次提交课时时自动建课表）
		groups := v1.Group("/groups")
		{
			groups.GET("/:id/timetable", h.Timetable.GetGroupTimetable)
			groups.POST("/:id/timetable/slots", guard(h.Timetable.CreateGroupSlots)...)
		}

		// 课时模块
		timeSlots := v1.Group("/time-slots")
		{
			timeSlots.POST("/bulk-delete", guard(h.TimeSlot.BulkDeleteTimeSlots)...)
			timeSlots.GET("/:id", h.TimeSlot.GetTimeSlot)
			timeSlots.PUT("/:id", guard(h.TimeSlot.UpdateTimeSlot)...)
			timeSlots.DELETE("/:id", guard(h.TimeSlot.DeleteTimeSlot)...)
		}

		// 教师课表
		v1.GET("/teachers/:id/slots", h.TimeSlot.ListTeacherSlots)

		// 学期模块
		semesters := v1.Group("/semesters")
		{
			semesters.GET("", h.Semester.ListSemesters)
			semesters.GET("/:id", h.Semester.GetSemester)
			semesters.GET("/:id/weeks", h.Semester.ListSemesterWeeks)
			semesters.POST("", middleware.RoleAuth("admin"), h.Semester.CreateSemester)
			semesters.PUT("/:id", middleware.RoleAuth("admin"), h.Semester.UpdateSemester)
			semesters.DELETE("/:id", middleware.RoleAuth("admin"), h.Semester.DeleteSemester)
		}

		// 教室模块
		locations := v1.Group("/locations")
		{
			locations.GET("", h.Location.ListLocations)
			locations.GET("/:id", h.Location.GetLocation)
			locations.POST("", middleware.RoleAuth("admin"), h.Location.CreateLocation)
			locations.PUT("/:id", middleware.RoleAuth("admin"), h.Location.UpdateLocation)
			locations.DELETE("/:id", middleware.RoleAuth("admin"), h.Location.DeleteLocation)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/timetables/:id/weeks/:week_number", h.Export.ExportWeek)
			export.GET("/timetables/:id/calendar.ics", h.Export.TimetableCalendar)
			export.GET("/teachers/:id/calendar.ics", h.Export.TeacherCalendar)
		}
	}

	return r
}
