package session

import "github.com/hireboard-dev/hireboard/internal/models"

// cache holds the last list/detail results shown to the operator. Last write
// wins; it is dropped on logout.
type cache struct {
	jobs          []models.Job
	currentJob    *models.Job
	resumes       []models.Resume
	currentResume *models.Resume
	matches       []models.Match
	currentMatch  *models.Match
	plans         []models.Plan
	currentPlan   *models.Plan
}

func (s *Session) SetJobs(jobs []models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.jobs = jobs
}

func (s *Session) Jobs() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.jobs
}

func (s *Session) SetCurrentJob(job *models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.currentJob = job
}

func (s *Session) CurrentJob() *models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.currentJob
}

func (s *Session) SetResumes(resumes []models.Resume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.resumes = resumes
}

func (s *Session) Resumes() []models.Resume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.resumes
}

func (s *Session) SetCurrentResume(resume *models.Resume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.currentResume = resume
}

func (s *Session) CurrentResume() *models.Resume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.currentResume
}

func (s *Session) SetMatches(matches []models.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.matches = matches
}

func (s *Session) Matches() []models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.matches
}

func (s *Session) SetCurrentMatch(match *models.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.currentMatch = match
}

func (s *Session) CurrentMatch() *models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.currentMatch
}

func (s *Session) SetPlans(plans []models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.plans = plans
}

func (s *Session) Plans() []models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.plans
}

func (s *Session) SetCurrentPlan(plan *models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.currentPlan = plan
}

func (s *Session) CurrentPlan() *models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.currentPlan
}
