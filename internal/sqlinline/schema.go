package sqlinline

// QEnsureSchema creates the tables the service writes to. Every statement is
// idempotent so it can run on each start.
const QEnsureSchema = `--sql 570cedcf-6e40-439d-99a7-2fd885e8a2cd
create table if not exists job_submissions (
  id              uuid primary key,
  job_id          text not null,
  received_at     timestamptz not null default now(),
  record          jsonb not null default '{}'::jsonb,
  report_key      text not null default '',
  delivery_status text not null,
  delivery_reason text not null default '',
  recipient       text not null default '',
  country         text not null default ''
);
create index if not exists job_submissions_job_id_idx on job_submissions (job_id, received_at desc);
create table if not exists integration_tokens (
  id         uuid primary key default gen_random_uuid(),
  provider   text not null unique,
  token      text not null,
  properties jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`
