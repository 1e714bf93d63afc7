package service

import (
	"sort"
	"sync"

	"github.com/edupress/quizengine/internal/apperr"
	"github.com/edupress/quizengine/internal/model"
	"github.com/edupress/quizengine/internal/notification"
	"gorm.io/gorm"
)

// fakeStore is a shared in-memory backing for the repository fakes, so a
// submission written through the attempt repository is visible through
// the answer repository the way it would be in the database.
type fakeStore struct {
	mu            sync.Mutex
	quizzes       map[uint]*model.Quiz
	attempts      map[uint]*model.QuizAttempt
	answers       map[uint]*model.StudentAnswer
	nextQuizID    uint
	nextAttemptID uint
	nextAnswerID  uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quizzes:  make(map[uint]*model.Quiz),
		attempts: make(map[uint]*model.QuizAttempt),
		answers:  make(map[uint]*model.StudentAnswer),
	}
}

func (s *fakeStore) addQuiz(quiz *model.Quiz) *model.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quiz.ID == 0 {
		s.nextQuizID++
		quiz.ID = s.nextQuizID
	} else if quiz.ID > s.nextQuizID {
		s.nextQuizID = quiz.ID
	}
	s.quizzes[quiz.ID] = quiz
	return quiz
}

func (s *fakeStore) questionByID(id uint) *model.Question {
	for _, quiz := range s.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID == id {
				return &quiz.Questions[i]
			}
		}
	}
	return nil
}

type fakeQuizRepo struct {
	store *fakeStore
}

func (r *fakeQuizRepo) Create(quiz *model.Quiz) error {
	r.store.addQuiz(quiz)
	return nil
}

func (r *fakeQuizRepo) Update(quiz *model.Quiz) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.quizzes[quiz.ID] = quiz
	return nil
}

func (r *fakeQuizRepo) Delete(id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.quizzes, id)
	return nil
}

func (r *fakeQuizRepo) FindByID(id uint) (*model.Quiz, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	quiz, ok := r.store.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (r *fakeQuizRepo) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	return r.FindByID(id)
}

func (r *fakeQuizRepo) FindByCourse(courseID uint) ([]model.Quiz, error) {
	return r.byCourse(courseID, false), nil
}

func (r *fakeQuizRepo) FindPublishedByCourse(courseID uint) ([]model.Quiz, error) {
	return r.byCourse(courseID, true), nil
}

func (r *fakeQuizRepo) byCourse(courseID uint, publishedOnly bool) []model.Quiz {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var quizzes []model.Quiz
	for _, quiz := range r.store.quizzes {
		if quiz.CourseID != courseID {
			continue
		}
		if publishedOnly && quiz.Status != model.QuizStatusPublished {
			continue
		}
		quizzes = append(quizzes, *quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes
}

type fakeAttemptRepo struct {
	store *fakeStore
}

func (r *fakeAttemptRepo) CreateInProgress(attempt *model.QuizAttempt) (*model.QuizAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	// Mirrors the partial unique index: a second in-progress insert for
	// the same (quiz, student) hands back the existing row.
	for _, existing := range r.store.attempts {
		if existing.QuizID == attempt.QuizID &&
			existing.StudentID == attempt.StudentID &&
			existing.Status == model.AttemptStatusInProgress {
			return existing, nil
		}
	}
	r.store.nextAttemptID++
	attempt.ID = r.store.nextAttemptID
	r.store.attempts[attempt.ID] = attempt
	return attempt, nil
}

func (r *fakeAttemptRepo) Update(attempt *model.QuizAttempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.attempts[attempt.ID] = attempt
	return nil
}

func (r *fakeAttemptRepo) SaveSubmission(attempt *model.QuizAttempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range attempt.Answers {
		answer := &attempt.Answers[i]
		if answer.ID == 0 {
			r.store.nextAnswerID++
			answer.ID = r.store.nextAnswerID
		}
		answer.AttemptID = attempt.ID
		stored := *answer
		r.store.answers[stored.ID] = &stored
	}
	r.store.attempts[attempt.ID] = attempt
	return nil
}

func (r *fakeAttemptRepo) FindByID(id uint) (*model.QuizAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	attempt, ok := r.store.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *attempt
	copied.Answers = nil
	return &copied, nil
}

func (r *fakeAttemptRepo) FindByIDWithDetails(id uint) (*model.QuizAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	attempt, ok := r.store.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *attempt
	if quiz, ok := r.store.quizzes[copied.QuizID]; ok {
		copied.Quiz = *quiz
	}
	copied.Answers = nil
	for _, answer := range r.store.answers {
		if answer.AttemptID != id {
			continue
		}
		withQuestion := *answer
		if question := r.store.questionByID(answer.QuestionID); question != nil {
			withQuestion.Question = *question
		}
		copied.Answers = append(copied.Answers, withQuestion)
	}
	return &copied, nil
}

func (r *fakeAttemptRepo) FindInProgress(quizID, studentID uint) (*model.QuizAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, attempt := range r.store.attempts {
		if attempt.QuizID == quizID && attempt.StudentID == studentID &&
			attempt.Status == model.AttemptStatusInProgress {
			return attempt, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttemptRepo) FindByQuizAndStudent(quizID, studentID uint) ([]model.QuizAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var attempts []model.QuizAttempt
	for _, attempt := range r.store.attempts {
		if attempt.QuizID == quizID && attempt.StudentID == studentID {
			attempts = append(attempts, *attempt)
		}
	}
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].AttemptNumber < attempts[j].AttemptNumber })
	return attempts, nil
}

func (r *fakeAttemptRepo) FindAllByQuiz(quizID uint) ([]model.QuizAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var attempts []model.QuizAttempt
	for _, attempt := range r.store.attempts {
		if attempt.QuizID == quizID {
			attempts = append(attempts, *attempt)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		if attempts[i].StudentID != attempts[j].StudentID {
			return attempts[i].StudentID < attempts[j].StudentID
		}
		return attempts[i].AttemptNumber < attempts[j].AttemptNumber
	})
	return attempts, nil
}

func (r *fakeAttemptRepo) CountByQuizAndStudent(quizID, studentID uint) (int64, error) {
	attempts, _ := r.FindByQuizAndStudent(quizID, studentID)
	return int64(len(attempts)), nil
}

func (r *fakeAttemptRepo) CountByQuiz(quizID uint) (int64, error) {
	attempts, _ := r.FindAllByQuiz(quizID)
	return int64(len(attempts)), nil
}

type fakeQuestionRepo struct {
	store      *fakeStore
	nextID     uint
	nextOption uint
}

func (r *fakeQuestionRepo) assignIDs(question *model.Question) {
	if question.ID == 0 {
		r.nextID++
		question.ID = r.nextID + 1000
	}
	for i := range question.Options {
		if question.Options[i].ID == 0 {
			r.nextOption++
			question.Options[i].ID = r.nextOption + 2000
		}
		question.Options[i].QuestionID = question.ID
	}
}

func (r *fakeQuestionRepo) Create(question *model.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.assignIDs(question)
	quiz, ok := r.store.quizzes[question.QuizID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.Questions = append(quiz.Questions, *question)
	return nil
}

func (r *fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	question := r.store.questionByID(id)
	if question == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *question
	return &copied, nil
}

func (r *fakeQuestionRepo) FindByQuizID(quizID uint) ([]model.Question, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	quiz, ok := r.store.quizzes[quizID]
	if !ok {
		return nil, nil
	}
	questions := make([]model.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	sort.Slice(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })
	return questions, nil
}

func (r *fakeQuestionRepo) ReplaceOptions(question *model.Question, options []model.QuestionOption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	question.Options = options
	r.assignIDs(question)
	quiz, ok := r.store.quizzes[question.QuizID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == question.ID {
			quiz.Questions[i] = *question
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) Update(question *model.Question) error {
	return r.ReplaceOptions(question, question.Options)
}

func (r *fakeQuestionRepo) Delete(id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, quiz := range r.store.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID == id {
				quiz.Questions = append(quiz.Questions[:i], quiz.Questions[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

type fakeAnswerRepo struct {
	store *fakeStore
}

func (r *fakeAnswerRepo) FindByID(id uint) (*model.StudentAnswer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	answer, ok := r.store.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *answer
	if question := r.store.questionByID(answer.QuestionID); question != nil {
		copied.Question = *question
	}
	return &copied, nil
}

func (r *fakeAnswerRepo) Update(answer *model.StudentAnswer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *answer
	copied.Question = model.Question{}
	r.store.answers[answer.ID] = &copied
	return nil
}

// ApplyGrade mirrors the real repository: the answer lands first, then
// the score is recomputed from what is persisted.
func (r *fakeAnswerRepo) ApplyGrade(answer *model.StudentAnswer) (int, error) {
	if err := r.Update(answer); err != nil {
		return 0, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	score := 0
	for _, sibling := range r.store.answers {
		if sibling.AttemptID == answer.AttemptID {
			score += sibling.MarksAwarded
		}
	}
	if attempt, ok := r.store.attempts[answer.AttemptID]; ok {
		s := score
		attempt.Score = &s
	}
	return score, nil
}

type fakeCourseResolver struct {
	courses map[uint]uint
}

func (f *fakeCourseResolver) CourseIDForClass(classID uint) (uint, error) {
	courseID, ok := f.courses[classID]
	if !ok {
		return 0, apperr.NotFound("class_not_found", "class not found")
	}
	return courseID, nil
}

type fakeStudentDirectory struct {
	names   map[uint]string
	rosters map[uint][]uint
}

func (f *fakeStudentDirectory) DisplayName(studentID uint) (string, error) {
	name, ok := f.names[studentID]
	if !ok {
		return "", apperr.NotFound("student_not_found", "student not found")
	}
	return name, nil
}

func (f *fakeStudentDirectory) StudentsInClass(classID uint) ([]uint, error) {
	return f.rosters[classID], nil
}

// recordingNotifier captures every notification so tests can assert on
// fan-out without a broker.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Notification
	err  error
}

func (n *recordingNotifier) Notify(msg notification.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) byType(t string) []notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.Notification
	for _, msg := range n.sent {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}
