package testbackend

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/hireboard-dev/hireboard/internal/models"
)

var allowedFileTypes = map[string]bool{"pdf": true, "doc": true, "docx": true, "jpg": true, "jpeg": true, "png": true}

type jobRequest struct {
	PositionName     string   `json:"position_name" validate:"required"`
	Department       string   `json:"department"`
	Responsibilities string   `json:"responsibilities" validate:"required"`
	Requirements     string   `json:"requirements" validate:"required"`
	SalaryRange      string   `json:"salary_range"`
	Location         string   `json:"location"`
	Tags             []string `json:"tags"`
}

type resumeRequest struct {
	CandidateName  string `json:"candidate_name"`
	FileURL        string `json:"file_url"`
	FileType       string `json:"file_type"`
	ParsedContent  string `json:"parsed_content"`
	TalentPortrait string `json:"talent_portrait"`
}

type matchRequest struct {
	JobID    uint `json:"job_id" validate:"required"`
	ResumeID uint `json:"resume_id" validate:"required"`
}

type batchMatchRequest struct {
	JobID     uint   `json:"job_id" validate:"required"`
	ResumeIDs []uint `json:"resume_ids" validate:"required,min=1"`
}

type planRequest struct {
	JobID        uint   `json:"job_id" validate:"required"`
	Title        string `json:"title"`
	CandidateIDs []uint `json:"candidate_ids"`
}

type planFields struct {
	Title        string `json:"title" validate:"required"`
	JobID        uint   `json:"job_id" validate:"required"`
	Description  string `json:"description"`
	Strategy     string `json:"strategy"`
	CandidateIDs []uint `json:"candidate_ids"`
}

// Jobs

func (b *Backend) listJobs(c *gin.Context) {
	q := b.db.Order("id")
	if name := c.Query("position_name"); name != "" {
		q = q.Where("position_name LIKE ?", "%"+name+"%")
	}
	if dept := c.Query("department"); dept != "" {
		q = q.Where("department = ?", dept)
	}

	var jobs []models.Job
	if err := page(c, q).Find(&jobs).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (b *Backend) createJob(c *gin.Context) {
	var req jobRequest
	if !b.bindJSON(c, &req) {
		return
	}

	job := models.Job{
		PositionName:     req.PositionName,
		Department:       req.Department,
		Responsibilities: req.Responsibilities,
		Requirements:     req.Requirements,
		SalaryRange:      req.SalaryRange,
		Location:         req.Location,
		Tags:             req.Tags,
	}
	if err := b.db.Create(&job).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (b *Backend) uploadJob(c *gin.Context) {
	file, content, ok := b.readUpload(c, "file")
	if !ok {
		return
	}

	position := c.PostForm("position_name")
	if position == "" {
		position = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}

	job := models.Job{
		PositionName:     position,
		Department:       c.PostForm("department"),
		Responsibilities: content,
		Requirements:     content,
		Tags:             keywords(content, 5),
	}
	if err := b.db.Create(&job).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// parseJob reads a job document into job fields without storing anything
func (b *Backend) parseJob(c *gin.Context) {
	file, content, ok := b.readUpload(c, "file")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.JobParseResult{
		PositionName:     strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)),
		Responsibilities: content,
		Requirements:     content,
		Tags:             keywords(content, 5),
	})
}

func (b *Backend) getJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var job models.Job
	if !b.findOr404(c, &job, id, "Job") {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (b *Backend) updateJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	var job models.Job
	if !b.findOr404(c, &job, id, "Job") {
		return
	}

	if req.PositionName != "" {
		job.PositionName = req.PositionName
	}
	if req.Department != "" {
		job.Department = req.Department
	}
	if req.Responsibilities != "" {
		job.Responsibilities = req.Responsibilities
	}
	if req.Requirements != "" {
		job.Requirements = req.Requirements
	}
	if req.SalaryRange != "" {
		job.SalaryRange = req.SalaryRange
	}
	if req.Location != "" {
		job.Location = req.Location
	}
	if req.Tags != nil {
		job.Tags = req.Tags
	}

	if err := b.db.Save(&job).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (b *Backend) deleteJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var job models.Job
	if !b.findOr404(c, &job, id, "Job") {
		return
	}
	if err := b.db.Where("job_id = ?", id).Delete(&models.Match{}).Error; err != nil {
		b.internalError(c, err)
		return
	}
	if err := b.db.Delete(&job).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Resumes

func (b *Backend) listResumes(c *gin.Context) {
	q := b.db.Preload("Tags").Order("id")
	if name := c.Query("candidate_name"); name != "" {
		q = q.Where("candidate_name LIKE ?", "%"+name+"%")
	}

	var resumes []models.Resume
	if err := page(c, q).Find(&resumes).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (b *Backend) createResume(c *gin.Context) {
	var req resumeRequest
	if !b.bindJSON(c, &req) {
		return
	}
	if req.FileType != "" && !allowedFileTypes[req.FileType] {
		abortDetail(c, http.StatusBadRequest, "unsupported file type")
		return
	}

	resume := models.Resume{
		CandidateName:  req.CandidateName,
		FileURL:        req.FileURL,
		FileType:       req.FileType,
		ParsedContent:  req.ParsedContent,
		TalentPortrait: req.TalentPortrait,
		Tags:           tagsFor(req.ParsedContent),
	}
	if err := b.db.Create(&resume).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

func (b *Backend) searchResumes(c *gin.Context) {
	q := b.db.Preload("Tags").Order("id")
	if keyword := c.Query("keyword"); keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("candidate_name LIKE ? OR parsed_content LIKE ?", like, like)
	}
	if tags := c.QueryArray("tags"); len(tags) > 0 {
		q = q.Where("id IN (?)", b.db.Model(&models.Tag{}).Select("resume_id").Where("name IN ?", tags))
	}

	var resumes []models.Resume
	if err := page(c, q).Find(&resumes).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (b *Backend) uploadResume(c *gin.Context) {
	file, content, ok := b.readUpload(c, "file")
	if !ok {
		return
	}

	resume, err := b.storeResume(file, content, c.PostForm("candidate_name"))
	if err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

func (b *Backend) batchUploadResumes(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		abortDetail(c, http.StatusBadRequest, "no files uploaded")
		return
	}

	resumes := make([]models.Resume, 0, len(form.File["files"]))
	for _, file := range form.File["files"] {
		content, err := readFileHeader(file)
		if err != nil {
			abortDetail(c, http.StatusBadRequest, err.Error())
			return
		}
		resume, err := b.storeResume(file, content, "")
		if err != nil {
			b.internalError(c, err)
			return
		}
		resumes = append(resumes, *resume)
	}
	c.JSON(http.StatusOK, resumes)
}

func (b *Backend) storeResume(file *multipart.FileHeader, content, candidate string) (*models.Resume, error) {
	if candidate == "" {
		candidate = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}

	resume := &models.Resume{
		CandidateName: candidate,
		FileURL:       "uploads/resumes/" + file.Filename,
		FileType:      fileType(file.Filename),
		OCRContent:    content,
		ParsedContent: content,
		Tags:          tagsFor(content),
	}
	if err := b.db.Create(resume).Error; err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}
	return resume, nil
}

func (b *Backend) getResume(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var resume models.Resume
	if !b.findOr404(c, &resume, id, "Resume", "Tags") {
		return
	}
	c.JSON(http.StatusOK, resume)
}

func (b *Backend) updateResume(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req resumeRequest
	if !b.bindJSON(c, &req) {
		return
	}
	var resume models.Resume
	if !b.findOr404(c, &resume, id, "Resume", "Tags") {
		return
	}

	if req.CandidateName != "" {
		resume.CandidateName = req.CandidateName
	}
	if req.ParsedContent != "" {
		resume.ParsedContent = req.ParsedContent
	}
	if req.TalentPortrait != "" {
		resume.TalentPortrait = req.TalentPortrait
	}

	if err := b.db.Omit("Tags").Save(&resume).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

func (b *Backend) deleteResume(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var resume models.Resume
	if !b.findOr404(c, &resume, id, "Resume") {
		return
	}
	if err := b.db.Where("resume_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
		b.internalError(c, err)
		return
	}
	if err := b.db.Where("resume_id = ?", id).Delete(&models.Match{}).Error; err != nil {
		b.internalError(c, err)
		return
	}
	if err := b.db.Delete(&resume).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

// Matches

func (b *Backend) listMatches(c *gin.Context) {
	q := b.db.Order("match_score DESC, id")
	if jobID := c.Query("job_id"); jobID != "" {
		q = q.Where("job_id = ?", jobID)
	}
	if resumeID := c.Query("resume_id"); resumeID != "" {
		q = q.Where("resume_id = ?", resumeID)
	}
	if minScore, err := strconv.ParseFloat(c.Query("min_score"), 64); err == nil {
		q = q.Where("match_score >= ?", minScore)
	}

	var matches []models.Match
	if err := page(c, q).Find(&matches).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func (b *Backend) createMatch(c *gin.Context) {
	var req matchRequest
	if !b.bindJSON(c, &req) {
		return
	}

	var job models.Job
	if !b.findOr404(c, &job, req.JobID, "Job") {
		return
	}
	match, ok := b.scoreOne(c, &job, req.ResumeID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, match)
}

func (b *Backend) batchCreateMatches(c *gin.Context) {
	var req batchMatchRequest
	if !b.bindJSON(c, &req) {
		return
	}

	var job models.Job
	if !b.findOr404(c, &job, req.JobID, "Job") {
		return
	}

	matches := make([]models.Match, 0, len(req.ResumeIDs))
	for _, resumeID := range req.ResumeIDs {
		match, ok := b.scoreOne(c, &job, resumeID)
		if !ok {
			return
		}
		matches = append(matches, *match)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].MatchScore > matches[j].MatchScore })
	c.JSON(http.StatusOK, matches)
}

func (b *Backend) scoreOne(c *gin.Context, job *models.Job, resumeID uint) (*models.Match, bool) {
	var resume models.Resume
	if !b.findOr404(c, &resume, resumeID, "Resume") {
		return nil, false
	}

	score, shared := score(job.Requirements+" "+strings.Join(job.Tags, " "), resume.ParsedContent)
	match := &models.Match{
		JobID:            job.ID,
		ResumeID:         resume.ID,
		MatchScore:       score,
		MatchExplanation: explain(shared),
	}
	if err := b.db.Create(match).Error; err != nil {
		b.internalError(c, err)
		return nil, false
	}
	return match, true
}

func (b *Backend) bestForJob(c *gin.Context) {
	b.best(c, "job_id")
}

func (b *Backend) bestForResume(c *gin.Context) {
	b.best(c, "resume_id")
}

func (b *Backend) best(c *gin.Context, column string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	var matches []models.Match
	if err := b.db.Where(column+" = ?", id).Order("match_score DESC, id").Limit(limit).Find(&matches).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// Plans

func (b *Backend) listPlans(c *gin.Context) {
	var plans []models.Plan
	if err := page(c, b.db.Order("id")).Find(&plans).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (b *Backend) generatePlan(c *gin.Context) {
	var req planRequest
	if !b.bindJSON(c, &req) {
		return
	}

	var job models.Job
	if !b.findOr404(c, &job, req.JobID, "Job") {
		return
	}

	candidates := req.CandidateIDs
	if len(candidates) == 0 {
		var best []models.Match
		b.db.Where("job_id = ?", job.ID).Order("match_score DESC").Limit(5).Find(&best)
		for _, m := range best {
			candidates = append(candidates, m.ResumeID)
		}
	}

	title := req.Title
	if title == "" {
		title = "Recruitment plan: " + job.PositionName
	}

	plan := models.Plan{
		Title:        title,
		JobID:        job.ID,
		Description:  fmt.Sprintf("Hiring plan for %s (%s).", job.PositionName, orNone(job.Department)),
		Strategy:     fmt.Sprintf("Interview %d shortlisted candidates, then run a technical round on: %s.", len(candidates), orNone(strings.Join(job.Tags, ", "))),
		CandidateIDs: candidates,
	}
	if err := b.db.Create(&plan).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (b *Backend) createPlan(c *gin.Context) {
	var req planFields
	if !b.bindJSON(c, &req) {
		return
	}

	var job models.Job
	if !b.findOr404(c, &job, req.JobID, "Job") {
		return
	}

	plan := models.Plan{
		Title:        req.Title,
		JobID:        job.ID,
		Description:  req.Description,
		Strategy:     req.Strategy,
		CandidateIDs: req.CandidateIDs,
	}
	if err := b.db.Create(&plan).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (b *Backend) updatePlan(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req planFields
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	var plan models.Plan
	if !b.findOr404(c, &plan, id, "Plan") {
		return
	}

	if req.JobID != 0 {
		var job models.Job
		if !b.findOr404(c, &job, req.JobID, "Job") {
			return
		}
		plan.JobID = job.ID
	}
	if req.Title != "" {
		plan.Title = req.Title
	}
	if req.Description != "" {
		plan.Description = req.Description
	}
	if req.Strategy != "" {
		plan.Strategy = req.Strategy
	}
	if req.CandidateIDs != nil {
		plan.CandidateIDs = req.CandidateIDs
	}

	if err := b.db.Save(&plan).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (b *Backend) getPlan(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var plan models.Plan
	if !b.findOr404(c, &plan, id, "Plan") {
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (b *Backend) exportPlan(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var plan models.Plan
	if !b.findOr404(c, &plan, id, "Plan") {
		return
	}

	format := c.DefaultQuery("format", "pdf")
	body := fmt.Sprintf("%s\n\n%s\n\n%s\n", plan.Title, plan.Description, plan.Strategy)

	switch format {
	case "pdf":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=plan-%d.pdf", plan.ID))
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4\n"+body))
	case "txt":
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
	default:
		abortDetail(c, http.StatusBadRequest, "unsupported export format")
	}
}

func (b *Backend) deletePlan(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var plan models.Plan
	if !b.findOr404(c, &plan, id, "Plan") {
		return
	}
	if err := b.db.Delete(&plan).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Uploads and scoring

func (b *Backend) readUpload(c *gin.Context, field string) (*multipart.FileHeader, string, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "no file uploaded")
		return nil, "", false
	}
	if !allowedFileTypes[fileType(file.Filename)] {
		abortDetail(c, http.StatusBadRequest, "unsupported file type")
		return nil, "", false
	}
	content, err := readFileHeader(file)
	if err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	return file, content, true
}

func readFileHeader(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	return string(data), nil
}

func fileType(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func tokenize(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}

// keywords returns up to n distinct words of text in first-seen order
func keywords(text string, n int) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()")
		if len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == n {
			break
		}
	}
	return out
}

func tagsFor(content string) []models.Tag {
	words := keywords(content, 5)
	tags := make([]models.Tag, len(words))
	for i, w := range words {
		tags[i] = models.Tag{Name: w, Category: "skill"}
	}
	return tags
}

// score is the share of job terms found in the resume, in [0, 1]
func score(jobText, resumeText string) (float64, []string) {
	want := tokenize(jobText)
	have := tokenize(resumeText)
	if len(want) == 0 {
		return 0, nil
	}

	var shared []string
	for w := range want {
		if have[w] {
			shared = append(shared, w)
		}
	}
	sort.Strings(shared)
	return float64(len(shared)) / float64(len(want)), shared
}

func explain(shared []string) string {
	if len(shared) == 0 {
		return "No overlap with the job requirements."
	}
	return "Matches on: " + strings.Join(shared, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
