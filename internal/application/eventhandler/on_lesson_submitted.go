package eventhandler

import (
	"context"
	"log/slog"

	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/eligibility"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/submission"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON LESSON SUBMITTED HANDLER
//
// Fires on every submission document creation. Gated hard on the final lesson
// name: any other submission is ignored. When the final lesson lands and the
// user has submitted every required lesson of the course, the user graduates:
// the graduated Discord role is granted and the course NFT is minted.
// ═══════════════════════════════════════════════════════════════════════════

// OnLessonSubmittedHandler runs the graduation flow.
type OnLessonSubmittedHandler struct {
	users      user.Repository
	cohorts    cohort.Repository
	courses    cohort.CourseRepository
	ledger     submission.Ledger
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewOnLessonSubmittedHandler creates the handler.
func NewOnLessonSubmittedHandler(
	users user.Repository,
	cohorts cohort.Repository,
	courses cohort.CourseRepository,
	ledger submission.Ledger,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
) *OnLessonSubmittedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnLessonSubmittedHandler{
		users:      users,
		cohorts:    cohorts,
		courses:    courses,
		ledger:     ledger,
		dispatcher: dispatcher,
		logger:     logger.With("handler", "on_lesson_submitted"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnLessonSubmittedHandler) Handle(ctx context.Context, event shared.Event) error {
	subEvent, ok := event.(submission.CreatedEvent)
	if !ok {
		h.logger.Warn("received non-SubmissionCreatedEvent", "event_type", event.EventType())
		return nil
	}

	created := subEvent.Submission
	if created.Lesson != eligibility.FinalLesson {
		return nil
	}

	c, err := h.cohorts.Get(ctx, created.CohortID)
	if err != nil {
		return err
	}
	course, err := h.courses.Get(ctx, c.CourseID)
	if err != nil {
		return err
	}

	completed, err := eligibility.HasCompletedCourse(ctx, created.UserID, course, h.ledger)
	if err != nil {
		return err
	}
	if !completed {
		// Precondition failed: short-circuit with a log line, no error.
		h.logger.Info("user has not completed all lessons",
			"user_id", created.UserID,
			"course_id", course.ID,
		)
		return nil
	}

	u, err := h.users.Get(ctx, created.UserID)
	if err != nil {
		return err
	}

	h.dispatcher.Dispatch(ctx, eligibility.GrantDiscordRole(u.Discord.ID, eligibility.GraduatedRoleID))
	h.dispatcher.Dispatch(ctx, eligibility.MintGraduationNFT(c, course, u))

	h.logger.Info("graduation flow completed",
		"user_id", u.ID,
		"cohort_id", c.ID,
		"nft_title", course.NFTTitle,
	)
	return nil
}
