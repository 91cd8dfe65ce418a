package sqlinline

const QSelectIntegrationToken = `--sql 885a3196-c7ac-4335-9a08-78d7a002b462
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql ff66805b-3af1-4836-b54d-5025d0ad63e9
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
  token = excluded.token,
  properties = excluded.properties,
  updated_at = now();
`
