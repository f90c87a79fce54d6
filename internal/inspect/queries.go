package inspect

// One introspection query per object kind. Every query scopes to user schemas
// and excludes extension-owned rows; extensions themselves load directly.
// Comments come from pg_description keyed on objoid and the kind-appropriate
// objsubid.

const querySchemas = `
SELECT n.nspname,
       pg_get_userbyid(n.nspowner) AS owner,
       d.description
FROM pg_catalog.pg_namespace n
LEFT JOIN pg_catalog.pg_description d ON d.objoid = n.oid AND d.objsubid = 0
WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND n.nspname NOT LIKE 'pg_temp_%'
  AND n.nspname NOT LIKE 'pg_toast_temp_%'
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = n.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname
`

const queryExtensions = `
SELECT e.extname,
       n.nspname AS schema,
       e.extversion,
       d.description
FROM pg_catalog.pg_extension e
JOIN pg_catalog.pg_namespace n ON n.oid = e.extnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = e.oid AND d.objsubid = 0
WHERE e.extname <> 'plpgsql'
ORDER BY e.extname
`

const queryTables = `
SELECT n.nspname,
       c.relname,
       c.relrowsecurity,
       c.relforcerowsecurity,
       d.description
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = c.oid AND d.objsubid = 0
WHERE c.relkind = 'r'
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = c.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, c.relname
`

const queryColumns = `
SELECT n.nspname,
       c.relname,
       a.attname,
       a.attnum,
       pg_catalog.format_type(a.atttypid, a.atttypmod) AS data_type,
       a.attnotnull,
       pg_catalog.pg_get_expr(ad.adbin, ad.adrelid) AS default_expr,
       a.attgenerated,
       a.attidentity,
       CASE WHEN a.attcollation <> t.typcollation THEN col.collname END AS collation,
       tn.nspname AS type_schema,
       bt.typname AS type_name,
       bt.typtype AS type_kind,
       d.description
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid AND c.relkind = 'r'
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
JOIN pg_catalog.pg_type bt ON bt.oid = CASE WHEN t.typelem <> 0 AND t.typlen = -1 THEN t.typelem ELSE t.oid END
JOIN pg_catalog.pg_namespace tn ON tn.oid = bt.typnamespace
LEFT JOIN pg_catalog.pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
LEFT JOIN pg_catalog.pg_collation col ON col.oid = a.attcollation
LEFT JOIN pg_catalog.pg_description d ON d.objoid = c.oid AND d.objsubid = a.attnum
WHERE a.attnum > 0
  AND NOT a.attisdropped
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = c.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, c.relname, a.attnum
`

const queryPrimaryKeys = `
SELECT n.nspname,
       c.relname,
       con.conname,
       ARRAY(
         SELECT a.attname
         FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
         JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
         ORDER BY k.ord
       ) AS columns,
       d.description
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_class c ON c.oid = con.conrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = con.oid AND d.objsubid = 0
WHERE con.contype = 'p'
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = c.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, c.relname
`

const queryConstraints = `
SELECT n.nspname,
       c.relname,
       con.conname,
       con.contype,
       pg_catalog.pg_get_constraintdef(con.oid, true) AS definition,
       ARRAY(
         SELECT a.attname
         FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
         JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
         ORDER BY k.ord
       ) AS columns,
       fn.nspname AS ref_schema,
       fc.relname AS ref_table,
       ARRAY(
         SELECT a.attname
         FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
         JOIN pg_catalog.pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
         ORDER BY k.ord
       ) AS ref_columns,
       con.confdeltype,
       con.confupdtype,
       con.condeferrable,
       con.condeferred,
       d.description
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_class c ON c.oid = con.conrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_class fc ON fc.oid = con.confrelid
LEFT JOIN pg_catalog.pg_namespace fn ON fn.oid = fc.relnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = con.oid AND d.objsubid = 0
WHERE con.contype IN ('f', 'u', 'c', 'x')
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = c.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, c.relname, con.conname
`

// Indexes backing primary-key, unique, or exclusion constraints are excluded
// via pg_constraint.conindid. Indexes merely referenced by foreign keys stay:
// FK references do not own the index.
const queryIndexes = `
SELECT n.nspname,
       ic.relname AS index_name,
       tc.relname AS table_name,
       am.amname,
       i.indisunique,
       i.indnkeyatts,
       i.indnatts,
       pg_catalog.pg_get_indexdef(i.indexrelid, 0, true) AS definition,
       pg_catalog.pg_get_expr(i.indpred, i.indrelid, true) AS predicate,
       ic.reloptions,
       ts.spcname AS tablespace,
       d.description
FROM pg_catalog.pg_index i
JOIN pg_catalog.pg_class ic ON ic.oid = i.indexrelid
JOIN pg_catalog.pg_class tc ON tc.oid = i.indrelid
JOIN pg_catalog.pg_namespace n ON n.oid = ic.relnamespace
JOIN pg_catalog.pg_am am ON am.oid = ic.relam
LEFT JOIN pg_catalog.pg_tablespace ts ON ts.oid = ic.reltablespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = ic.oid AND d.objsubid = 0
WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT i.indisprimary
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_constraint con
    WHERE con.conindid = i.indexrelid AND con.contype IN ('p', 'u', 'x')
  )
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = ic.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, ic.relname
`

const queryIndexColumns = `
SELECT n.nspname,
       ic.relname AS index_name,
       k.ord,
       k.ord <= i.indnkeyatts AS is_key,
       CASE WHEN k.attnum = 0 THEN NULL ELSE a.attname END AS column_name,
       pg_catalog.pg_get_indexdef(i.indexrelid, k.ord::int, true) AS key_expr,
       CASE WHEN k.ord <= i.indnkeyatts AND NOT op.opcdefault THEN op.opcname END AS opclass,
       CASE WHEN k.ord <= i.indnkeyatts AND ic.relam IN (
         SELECT oid FROM pg_catalog.pg_am WHERE amname IN ('btree', 'gist', 'spgist', 'brin')
       ) THEN (i.indoption[k.ord - 1] & 1) = 1 END AS is_desc,
       CASE WHEN k.ord <= i.indnkeyatts THEN (i.indoption[k.ord - 1] & 2) = 2 END AS nulls_first,
       col.collname AS collation
FROM pg_catalog.pg_index i
JOIN pg_catalog.pg_class ic ON ic.oid = i.indexrelid
JOIN pg_catalog.pg_namespace n ON n.oid = ic.relnamespace
CROSS JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord)
LEFT JOIN pg_catalog.pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
LEFT JOIN pg_catalog.pg_opclass op ON op.oid = i.indclass[k.ord - 1]
LEFT JOIN pg_catalog.pg_collation col ON col.oid = i.indcollation[k.ord - 1] AND col.collname <> 'default'
WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT i.indisprimary
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_constraint con
    WHERE con.conindid = i.indexrelid AND con.contype IN ('p', 'u', 'x')
  )
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = ic.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, ic.relname, k.ord
`

const queryViews = `
SELECT n.nspname,
       c.relname,
       pg_catalog.pg_get_viewdef(c.oid, true) AS definition,
       c.reloptions,
       d.description
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = c.oid AND d.objsubid = 0
WHERE c.relkind = 'v'
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = c.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, c.relname
`

const queryViewColumns = `
SELECT n.nspname,
       c.relname,
       a.attname,
       pg_catalog.format_type(a.atttypid, a.atttypmod) AS data_type
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid AND c.relkind = 'v'
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE a.attnum > 0
  AND NOT a.attisdropped
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = c.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, c.relname, a.attnum
`

const queryFunctions = `
SELECT n.nspname,
       p.proname,
       pg_catalog.pg_get_function_identity_arguments(p.oid) AS identity_args,
       pg_catalog.pg_get_functiondef(p.oid) AS definition,
       pg_catalog.pg_get_function_result(p.oid) AS return_type,
       l.lanname,
       p.provolatile,
       p.proisstrict,
       p.prosecdef,
       p.prokind,
       d.description
FROM pg_catalog.pg_proc p
JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
JOIN pg_catalog.pg_language l ON l.oid = p.prolang
LEFT JOIN pg_catalog.pg_description d ON d.objoid = p.oid AND d.objsubid = 0
WHERE p.prokind IN ('f', 'p')
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = p.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, p.proname, identity_args
`

const queryFunctionParameters = `
SELECT n.nspname,
       p.proname,
       pg_catalog.pg_get_function_identity_arguments(p.oid) AS identity_args,
       t.ord,
       COALESCE(p.proargnames[t.ord], '') AS param_name,
       pg_catalog.format_type(t.typid, NULL) AS param_type,
       COALESCE(p.proargmodes[t.ord], 'i') AS param_mode
FROM pg_catalog.pg_proc p
JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
CROSS JOIN LATERAL unnest(COALESCE(p.proallargtypes, p.proargtypes::oid[])) WITH ORDINALITY AS t(typid, ord)
WHERE p.prokind IN ('f', 'p')
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = p.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, p.proname, identity_args, t.ord
`

// The state type's array element is unwrapped for dependency tracking only;
// the formatted state type keeps its array notation for rendered SQL.
const queryAggregates = `
SELECT n.nspname,
       p.proname,
       pg_catalog.pg_get_function_identity_arguments(p.oid) AS identity_args,
       pg_catalog.format_type(a.aggtranstype, NULL) AS state_type,
       st.typelem <> 0 AND st.typlen = -1 AS state_is_array,
       sen.nspname AS state_elem_schema,
       se.typname AS state_elem_name,
       a.aggtransfn::regproc::text AS transition_fn,
       CASE WHEN a.aggfinalfn <> 0 THEN a.aggfinalfn::regproc::text END AS final_fn,
       CASE WHEN a.aggcombinefn <> 0 THEN a.aggcombinefn::regproc::text END AS combine_fn,
       a.agginitval,
       d.description
FROM pg_catalog.pg_aggregate a
JOIN pg_catalog.pg_proc p ON p.oid = a.aggfnoid
JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
JOIN pg_catalog.pg_type st ON st.oid = a.aggtranstype
LEFT JOIN pg_catalog.pg_type se ON se.oid = st.typelem AND st.typlen = -1
LEFT JOIN pg_catalog.pg_namespace sen ON sen.oid = se.typnamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = p.oid AND d.objsubid = 0
WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = p.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, p.proname, identity_args
`

const queryTriggers = `
SELECT n.nspname,
       c.relname,
       t.tgname,
       t.tgtype,
       fn.nspname AS function_schema,
       fp.proname AS function_name,
       pg_catalog.pg_get_function_identity_arguments(fp.oid) AS function_args,
       pg_catalog.pg_get_triggerdef(t.oid, true) AS definition,
       t.tgoldtable,
       t.tgnewtable,
       ARRAY(
         SELECT a.attname
         FROM unnest(t.tgattr) WITH ORDINALITY AS k(attnum, ord)
         JOIN pg_catalog.pg_attribute a ON a.attrelid = t.tgrelid AND a.attnum = k.attnum
         ORDER BY k.ord
       ) AS update_columns,
       d.description
FROM pg_catalog.pg_trigger t
JOIN pg_catalog.pg_class c ON c.oid = t.tgrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_proc fp ON fp.oid = t.tgfoid
JOIN pg_catalog.pg_namespace fn ON fn.oid = fp.pronamespace
LEFT JOIN pg_catalog.pg_description d ON d.objoid = t.oid AND d.objsubid = 0
WHERE NOT t.tgisinternal
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = c.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, c.relname, t.tgname
`

const querySequences = `
SELECT n.nspname,
       c.relname,
       pg_catalog.format_type(s.seqtypid, NULL) AS data_type,
       s.seqstart,
       s.seqincrement,
       s.seqmin,
       s.seqmax,
       s.seqcache,
       s.seqcycle,
       on_.nspname AS owned_schema,
       oc.relname AS owned_table,
       oa.attname AS owned_column,
       d.description
FROM pg_catalog.pg_sequence s
JOIN pg_catalog.pg_class c ON c.oid = s.seqrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_depend dep
  ON dep.objid = c.oid AND dep.classid = 'pg_class'::regclass AND dep.deptype = 'a'
LEFT JOIN pg_catalog.pg_class oc ON oc.oid = dep.refobjid
LEFT JOIN pg_catalog.pg_namespace on_ ON on_.oid = oc.relnamespace
LEFT JOIN pg_catalog.pg_attribute oa ON oa.attrelid = dep.refobjid AND oa.attnum = dep.refobjsubid
LEFT JOIN pg_catalog.pg_description d ON d.objoid = c.oid AND d.objsubid = 0
WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend e
    WHERE e.objid = c.oid AND e.deptype = 'e'
  )
ORDER BY n.nspname, c.relname
`

const queryTypes = `
SELECT n.nspname,
       t.typname,
       t.typtype,
       ARRAY(
         SELECT e.enumlabel
         FROM pg_catalog.pg_enum e
         WHERE e.enumtypid = t.oid
         ORDER BY e.enumsortorder
       ) AS enum_values,
       rt.rngsubtype IS NOT NULL AS is_range,
       pg_catalog.format_type(rt.rngsubtype, NULL) AS range_subtype,
       rop.opcname AS range_opclass,
       rcol.collname AS range_collation,
       CASE WHEN rt.rngcanonical <> 0 THEN rt.rngcanonical::regproc::text END AS range_canonical,
       CASE WHEN rt.rngsubdiff <> 0 THEN rt.rngsubdiff::regproc::text END AS range_subdiff,
       d.description
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
LEFT JOIN pg_catalog.pg_range rt ON rt.rngtypid = t.oid
LEFT JOIN pg_catalog.pg_opclass rop ON rop.oid = rt.rngsubopc
LEFT JOIN pg_catalog.pg_collation rcol ON rcol.oid = rt.rngcollation
LEFT JOIN pg_catalog.pg_description d ON d.objoid = t.oid AND d.objsubid = 0
WHERE t.typtype IN ('e', 'c', 'r')
  AND (t.typtype <> 'c' OR EXISTS (
    SELECT 1 FROM pg_catalog.pg_class rc
    WHERE rc.oid = t.typrelid AND rc.relkind = 'c'
  ))
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = t.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, t.typname
`

const queryCompositeAttributes = `
SELECT n.nspname,
       t.typname,
       a.attname,
       pg_catalog.format_type(a.atttypid, a.atttypmod) AS data_type,
       col.collname AS collation,
       a.attnum
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
JOIN pg_catalog.pg_class rc ON rc.oid = t.typrelid AND rc.relkind = 'c'
JOIN pg_catalog.pg_attribute a ON a.attrelid = rc.oid
LEFT JOIN pg_catalog.pg_collation col
  ON col.oid = a.attcollation AND col.collname <> 'default'
WHERE t.typtype = 'c'
  AND a.attnum > 0
  AND NOT a.attisdropped
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = t.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, t.typname, a.attnum
`

const queryDomains = `
SELECT n.nspname,
       t.typname,
       pg_catalog.format_type(t.typbasetype, t.typtypmod) AS base_type,
       t.typnotnull,
       pg_catalog.pg_get_expr(t.typdefaultbin, 0) AS default_expr,
       col.collname AS collation,
       bn.nspname AS base_schema,
       bt.typname AS base_name,
       d.description
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
JOIN pg_catalog.pg_type bt ON bt.oid = t.typbasetype
JOIN pg_catalog.pg_namespace bn ON bn.oid = bt.typnamespace
LEFT JOIN pg_catalog.pg_collation col
  ON col.oid = t.typcollation AND col.collname <> 'default'
LEFT JOIN pg_catalog.pg_description d ON d.objoid = t.oid AND d.objsubid = 0
WHERE t.typtype = 'd'
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = t.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, t.typname
`

const queryDomainConstraints = `
SELECT n.nspname,
       t.typname,
       con.conname,
       pg_catalog.pg_get_constraintdef(con.oid, true) AS definition
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_type t ON t.oid = con.contypid
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
WHERE con.contypid <> 0
  AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND NOT EXISTS (
    SELECT 1 FROM pg_catalog.pg_depend dep
    WHERE dep.objid = t.oid AND dep.deptype = 'e'
  )
ORDER BY n.nspname, t.typname, con.conname
`

// aclexplode expands aclitem arrays into one row per (grantor, grantee,
// privilege). Grants collapse in Go into one record per grantee carrying the
// privilege union per grantor.
const queryGrants = `
SELECT kind,
       schema,
       name,
       args,
       owner,
       COALESCE(pg_get_userbyid(acl.grantee), 'PUBLIC') AS grantee,
       acl.privilege_type,
       acl.is_grantable
FROM (
  SELECT CASE c.relkind WHEN 'r' THEN 'table' WHEN 'v' THEN 'view' WHEN 'S' THEN 'sequence' END AS kind,
         n.nspname AS schema,
         c.relname AS name,
         '' AS args,
         pg_get_userbyid(c.relowner) AS owner,
         c.relacl AS acl
  FROM pg_catalog.pg_class c
  JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
  WHERE c.relkind IN ('r', 'v', 'S')
    AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
    AND NOT EXISTS (
      SELECT 1 FROM pg_catalog.pg_depend dep
      WHERE dep.objid = c.oid AND dep.deptype = 'e'
    )
  UNION ALL
  SELECT 'schema',
         NULL,
         n.nspname,
         '',
         pg_get_userbyid(n.nspowner),
         n.nspacl
  FROM pg_catalog.pg_namespace n
  WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
    AND n.nspname NOT LIKE 'pg_temp_%'
    AND n.nspname NOT LIKE 'pg_toast_temp_%'
    AND NOT EXISTS (
      SELECT 1 FROM pg_catalog.pg_depend dep
      WHERE dep.objid = n.oid AND dep.deptype = 'e'
    )
  UNION ALL
  SELECT 'function',
         n.nspname,
         p.proname,
         pg_catalog.pg_get_function_identity_arguments(p.oid),
         pg_get_userbyid(p.proowner),
         p.proacl
  FROM pg_catalog.pg_proc p
  JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
  WHERE p.prokind IN ('f', 'p')
    AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
    AND NOT EXISTS (
      SELECT 1 FROM pg_catalog.pg_depend dep
      WHERE dep.objid = p.oid AND dep.deptype = 'e'
    )
  UNION ALL
  SELECT CASE t.typtype WHEN 'd' THEN 'domain' ELSE 'type' END,
         n.nspname,
         t.typname,
         '',
         pg_get_userbyid(t.typowner),
         t.typacl
  FROM pg_catalog.pg_type t
  JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
  WHERE t.typtype IN ('e', 'c', 'r', 'd')
    AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
    AND NOT EXISTS (
      SELECT 1 FROM pg_catalog.pg_depend dep
      WHERE dep.objid = t.oid AND dep.deptype = 'e'
    )
) objs
CROSS JOIN LATERAL aclexplode(objs.acl) AS acl
WHERE objs.acl IS NOT NULL
ORDER BY kind, schema, name, args, grantee, acl.privilege_type
`

// pg_depend walk. The query resolves both endpoints to (kind, schema, name,
// args) tuples and applies the rewrite fixes in SQL:
//   - array types resolve to their element type
//   - objects owned by an extension resolve to the extension itself
//   - composite row types of tables and views resolve to the relation
const queryDepends = `
WITH resolved AS (
  SELECT d.classid, d.objid, d.refclassid, d.refobjid, d.deptype
  FROM pg_catalog.pg_depend d
  WHERE d.deptype IN ('n', 'a')
),
ids AS (
  SELECT c.oid,
         'pg_class'::regclass AS classid,
         CASE c.relkind WHEN 'r' THEN 'table' WHEN 'v' THEN 'view' WHEN 'S' THEN 'sequence' WHEN 'i' THEN 'index' END AS kind,
         n.nspname AS schema,
         c.relname AS name,
         '' AS args
  FROM pg_catalog.pg_class c
  JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
  WHERE c.relkind IN ('r', 'v', 'S', 'i')
  UNION ALL
  SELECT t.oid,
         'pg_type'::regclass,
         CASE
           WHEN t.typtype = 'd' THEN 'domain'
           WHEN t.typtype = 'c' AND rc.relkind = 'r' THEN 'table'
           WHEN t.typtype = 'c' AND rc.relkind = 'v' THEN 'view'
           ELSE 'type'
         END,
         CASE WHEN rc.relkind IN ('r', 'v') THEN rn.nspname ELSE tn.nspname END,
         CASE
           WHEN rc.relkind IN ('r', 'v') THEN rc.relname
           WHEN et.oid IS NOT NULL THEN et.typname
           ELSE t.typname
         END,
         ''
  FROM pg_catalog.pg_type t
  JOIN pg_catalog.pg_namespace tn ON tn.oid = t.typnamespace
  LEFT JOIN pg_catalog.pg_type et ON et.oid = t.typelem AND t.typlen = -1 AND t.typname LIKE '\_%'
  LEFT JOIN pg_catalog.pg_class rc ON rc.oid = t.typrelid AND rc.relkind IN ('r', 'v')
  LEFT JOIN pg_catalog.pg_namespace rn ON rn.oid = rc.relnamespace
  UNION ALL
  SELECT p.oid,
         'pg_proc'::regclass,
         CASE WHEN a.aggfnoid IS NOT NULL THEN 'aggregate' ELSE 'function' END,
         n.nspname,
         p.proname,
         pg_catalog.pg_get_function_identity_arguments(p.oid)
  FROM pg_catalog.pg_proc p
  JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
  LEFT JOIN pg_catalog.pg_aggregate a ON a.aggfnoid = p.oid
  UNION ALL
  -- View bodies hang off their rewrite rule; the rule stands in for the view.
  SELECT r.oid,
         'pg_rewrite'::regclass,
         CASE rc.relkind WHEN 'v' THEN 'view' END,
         rn.nspname,
         rc.relname,
         ''
  FROM pg_catalog.pg_rewrite r
  JOIN pg_catalog.pg_class rc ON rc.oid = r.ev_class
  JOIN pg_catalog.pg_namespace rn ON rn.oid = rc.relnamespace
  UNION ALL
  -- Column defaults hang off pg_attrdef; the default stands in for its table.
  SELECT ad.oid,
         'pg_attrdef'::regclass,
         'table',
         an.nspname,
         ac.relname,
         ''
  FROM pg_catalog.pg_attrdef ad
  JOIN pg_catalog.pg_class ac ON ac.oid = ad.adrelid
  JOIN pg_catalog.pg_namespace an ON an.oid = ac.relnamespace
  UNION ALL
  SELECT n.oid, 'pg_namespace'::regclass, 'schema', NULL, n.nspname, ''
  FROM pg_catalog.pg_namespace n
  UNION ALL
  SELECT e.oid, 'pg_extension'::regclass, 'extension', NULL, e.extname, ''
  FROM pg_catalog.pg_extension e
),
owned AS (
  SELECT d.classid, d.objid, e.extname
  FROM pg_catalog.pg_depend d
  JOIN pg_catalog.pg_extension e ON e.oid = d.refobjid
  WHERE d.refclassid = 'pg_extension'::regclass AND d.deptype = 'e'
)
SELECT obj.kind AS obj_kind,
       obj.schema AS obj_schema,
       obj.name AS obj_name,
       obj.args AS obj_args,
       CASE WHEN refown.extname IS NOT NULL THEN 'extension' ELSE ref.kind END AS ref_kind,
       CASE WHEN refown.extname IS NOT NULL THEN NULL ELSE ref.schema END AS ref_schema,
       COALESCE(refown.extname, ref.name) AS ref_name,
       CASE WHEN refown.extname IS NOT NULL THEN '' ELSE ref.args END AS ref_args
FROM resolved r
JOIN ids obj ON obj.classid = r.classid AND obj.oid = r.objid
JOIN ids ref ON ref.classid = r.refclassid AND ref.oid = r.refobjid
LEFT JOIN owned refown ON refown.classid = r.refclassid AND refown.objid = r.refobjid
LEFT JOIN owned objown ON objown.classid = r.classid AND objown.objid = r.objid
WHERE obj.kind IS NOT NULL
  AND ref.kind IS NOT NULL
  AND objown.extname IS NULL
  AND COALESCE(obj.schema, obj.name) NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
ORDER BY obj_kind, obj_schema, obj_name, obj_args, ref_kind, ref_schema, ref_name
`
