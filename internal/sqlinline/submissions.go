package sqlinline

const QInsertSubmission = `--sql 0c4d879a-3b16-452e-afdc-c440c53803c4
insert into job_submissions(
  id,
  job_id,
  received_at,
  record,
  report_key,
  delivery_status,
  delivery_reason,
  recipient,
  country
)
values (
  $1::uuid,
  $2::text,
  $3::timestamptz,
  coalesce($4::jsonb, '{}'::jsonb),
  $5::text,
  $6::text,
  $7::text,
  $8::text,
  $9::text
);
`

const QSelectLatestSubmission = `--sql 57d47734-a482-4821-9008-c6433e19c70a
select
  id,
  job_id,
  received_at,
  record,
  report_key,
  delivery_status,
  delivery_reason,
  recipient,
  country
from job_submissions
where job_id = $1::text
order by received_at desc
limit 1;
`
