package db

// Engine tables plus the collaborator tables the engine reads (students,
// schedules, enrollments, marks). Every table carries school_id so tenant
// isolation is enforceable in the store layer.

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  student_id TEXT,
  UNIQUE (school_id, username)
);
CREATE INDEX IF NOT EXISTS idx_users_school ON users(school_id);

CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  full_name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_students_school ON students(school_id);

CREATE TABLE IF NOT EXISTS classes (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classes_school ON classes(school_id);

CREATE TABLE IF NOT EXISTS academic_years (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_current INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_years_school ON academic_years(school_id);

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  academic_year_id TEXT NOT NULL REFERENCES academic_years(id),
  name TEXT NOT NULL,
  is_published INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_exams_school ON exams(school_id);

CREATE TABLE IF NOT EXISTS exam_schedules (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  exam_id TEXT NOT NULL REFERENCES exams(id),
  class_id TEXT NOT NULL REFERENCES classes(id),
  subject TEXT NOT NULL DEFAULT '',
  max_marks REAL NOT NULL DEFAULT 100
);
CREATE INDEX IF NOT EXISTS idx_schedules_school ON exam_schedules(school_id);

CREATE TABLE IF NOT EXISTS enrollments (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  student_id TEXT NOT NULL REFERENCES students(id),
  class_id TEXT NOT NULL REFERENCES classes(id),
  academic_year_id TEXT NOT NULL REFERENCES academic_years(id),
  is_active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(school_id, student_id);

CREATE TABLE IF NOT EXISTS marks (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id),
  student_id TEXT NOT NULL REFERENCES students(id),
  value REAL NOT NULL,
  is_absent INTEGER NOT NULL DEFAULT 0,
  remark TEXT NOT NULL DEFAULT '',
  UNIQUE (schedule_id, student_id)
);
CREATE INDEX IF NOT EXISTS idx_marks_school ON marks(school_id);

CREATE TABLE IF NOT EXISTS question_categories (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_categories_school ON question_categories(school_id);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  category_id TEXT REFERENCES question_categories(id),
  subject TEXT,
  qtype TEXT NOT NULL,
  prompt TEXT NOT NULL,
  options_json TEXT,
  correct_answer_json TEXT,
  points INTEGER NOT NULL DEFAULT 1,
  difficulty TEXT,
  tags_json TEXT,
  is_active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_questions_school ON questions(school_id);
CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category_id);

CREATE TABLE IF NOT EXISTS exam_configs (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  schedule_id TEXT NOT NULL UNIQUE REFERENCES exam_schedules(id),
  duration_minutes INTEGER NOT NULL,
  shuffle_questions INTEGER NOT NULL DEFAULT 0,
  shuffle_options INTEGER NOT NULL DEFAULT 0,
  allow_backtrack INTEGER NOT NULL DEFAULT 1,
  proctoring_enabled INTEGER NOT NULL DEFAULT 0,
  attempt_limit INTEGER NOT NULL DEFAULT 1,
  starts_at INTEGER,
  ends_at INTEGER,
  instructions TEXT
);
CREATE INDEX IF NOT EXISTS idx_configs_school ON exam_configs(school_id);

CREATE TABLE IF NOT EXISTS config_questions (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  config_id TEXT NOT NULL REFERENCES exam_configs(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id),
  order_index INTEGER NOT NULL,
  points_override INTEGER,
  UNIQUE (config_id, question_id)
);
CREATE INDEX IF NOT EXISTS idx_config_questions_config ON config_questions(config_id);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  config_id TEXT NOT NULL REFERENCES exam_configs(id),
  student_id TEXT NOT NULL REFERENCES students(id),
  attempt_no INTEGER NOT NULL,
  status TEXT NOT NULL,
  started_at INTEGER NOT NULL,
  submitted_at INTEGER,
  score INTEGER,
  max_score INTEGER,
  percentage REAL,
  ip_address TEXT,
  user_agent TEXT,
  UNIQUE (config_id, student_id, attempt_no)
);
CREATE INDEX IF NOT EXISTS idx_attempts_config ON attempts(school_id, config_id);
CREATE INDEX IF NOT EXISTS idx_attempts_student ON attempts(school_id, student_id);

CREATE TABLE IF NOT EXISTS answers (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id),
  answer_json TEXT,
  is_correct INTEGER,
  awarded_points INTEGER,
  answered_at INTEGER NOT NULL,
  UNIQUE (attempt_id, question_id)
);
CREATE INDEX IF NOT EXISTS idx_answers_attempt ON answers(attempt_id);

CREATE TABLE IF NOT EXISTS proctor_events (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  event_type TEXT NOT NULL,
  details_json TEXT,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_proctor_events_attempt ON proctor_events(attempt_id);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  school_id TEXT NOT NULL,
  actor TEXT NOT NULL DEFAULT '',
  typ TEXT NOT NULL,                         -- e.g. attempt.submitted
  key TEXT NOT NULL,                         -- natural key: entity id
  data TEXT NOT NULL,                        -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  student_id TEXT,
  UNIQUE (school_id, username)
);
CREATE INDEX IF NOT EXISTS idx_users_school ON users(school_id);

CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  full_name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_students_school ON students(school_id);

CREATE TABLE IF NOT EXISTS classes (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classes_school ON classes(school_id);

CREATE TABLE IF NOT EXISTS academic_years (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_current BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_years_school ON academic_years(school_id);

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  academic_year_id TEXT NOT NULL REFERENCES academic_years(id),
  name TEXT NOT NULL,
  is_published BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_exams_school ON exams(school_id);

CREATE TABLE IF NOT EXISTS exam_schedules (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  exam_id TEXT NOT NULL REFERENCES exams(id),
  class_id TEXT NOT NULL REFERENCES classes(id),
  subject TEXT NOT NULL DEFAULT '',
  max_marks DOUBLE PRECISION NOT NULL DEFAULT 100
);
CREATE INDEX IF NOT EXISTS idx_schedules_school ON exam_schedules(school_id);

CREATE TABLE IF NOT EXISTS enrollments (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  student_id TEXT NOT NULL REFERENCES students(id),
  class_id TEXT NOT NULL REFERENCES classes(id),
  academic_year_id TEXT NOT NULL REFERENCES academic_years(id),
  is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(school_id, student_id);

CREATE TABLE IF NOT EXISTS marks (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id),
  student_id TEXT NOT NULL REFERENCES students(id),
  value DOUBLE PRECISION NOT NULL,
  is_absent BOOLEAN NOT NULL DEFAULT FALSE,
  remark TEXT NOT NULL DEFAULT '',
  UNIQUE (schedule_id, student_id)
);
CREATE INDEX IF NOT EXISTS idx_marks_school ON marks(school_id);

CREATE TABLE IF NOT EXISTS question_categories (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_categories_school ON question_categories(school_id);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  category_id TEXT REFERENCES question_categories(id),
  subject TEXT,
  qtype TEXT NOT NULL,
  prompt TEXT NOT NULL,
  options_json TEXT,
  correct_answer_json TEXT,
  points INTEGER NOT NULL DEFAULT 1,
  difficulty TEXT,
  tags_json TEXT,
  is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_questions_school ON questions(school_id);
CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category_id);

CREATE TABLE IF NOT EXISTS exam_configs (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  schedule_id TEXT NOT NULL UNIQUE REFERENCES exam_schedules(id),
  duration_minutes INTEGER NOT NULL,
  shuffle_questions BOOLEAN NOT NULL DEFAULT FALSE,
  shuffle_options BOOLEAN NOT NULL DEFAULT FALSE,
  allow_backtrack BOOLEAN NOT NULL DEFAULT TRUE,
  proctoring_enabled BOOLEAN NOT NULL DEFAULT FALSE,
  attempt_limit INTEGER NOT NULL DEFAULT 1,
  starts_at BIGINT,
  ends_at BIGINT,
  instructions TEXT
);
CREATE INDEX IF NOT EXISTS idx_configs_school ON exam_configs(school_id);

CREATE TABLE IF NOT EXISTS config_questions (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  config_id TEXT NOT NULL REFERENCES exam_configs(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id),
  order_index INTEGER NOT NULL,
  points_override INTEGER,
  UNIQUE (config_id, question_id)
);
CREATE INDEX IF NOT EXISTS idx_config_questions_config ON config_questions(config_id);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  config_id TEXT NOT NULL REFERENCES exam_configs(id),
  student_id TEXT NOT NULL REFERENCES students(id),
  attempt_no INTEGER NOT NULL,
  status TEXT NOT NULL,
  started_at BIGINT NOT NULL,
  submitted_at BIGINT,
  score INTEGER,
  max_score INTEGER,
  percentage DOUBLE PRECISION,
  ip_address TEXT,
  user_agent TEXT,
  UNIQUE (config_id, student_id, attempt_no)
);
CREATE INDEX IF NOT EXISTS idx_attempts_config ON attempts(school_id, config_id);
CREATE INDEX IF NOT EXISTS idx_attempts_student ON attempts(school_id, student_id);

CREATE TABLE IF NOT EXISTS answers (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id),
  answer_json TEXT,
  is_correct BOOLEAN,
  awarded_points INTEGER,
  answered_at BIGINT NOT NULL,
  UNIQUE (attempt_id, question_id)
);
CREATE INDEX IF NOT EXISTS idx_answers_attempt ON answers(attempt_id);

CREATE TABLE IF NOT EXISTS proctor_events (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  event_type TEXT NOT NULL,
  details_json TEXT,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_proctor_events_attempt ON proctor_events(attempt_id);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  school_id TEXT NOT NULL,
  actor TEXT NOT NULL DEFAULT '',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
