package inspect

import (
	"context"
	"database/sql"

	"github.com/pgmt/pgmt/internal/catalog"
)

var volatilities = map[string]string{
	"i": "IMMUTABLE",
	"s": "STABLE",
	"v": "VOLATILE",
}

var parameterModes = map[string]string{
	"i": "IN",
	"o": "OUT",
	"b": "INOUT",
	"v": "VARIADIC",
	"t": "TABLE",
}

func (i *Inspector) loadFunctions(ctx context.Context, cat *catalog.Catalog) error {
	functions := make(map[catalog.ObjectID]*catalog.Function)

	err := i.query(ctx, "functions", queryFunctions, func(rows *sql.Rows) error {
		var schema, name, args, definition, language, volatility, prokind string
		var returns sql.NullString
		var strict, secdef bool
		var comment sql.NullString
		if err := rows.Scan(&schema, &name, &args, &definition, &returns,
			&language, &volatility, &strict, &secdef, &prokind, &comment); err != nil {
			return shapeErrorf("functions", "scan: %v", err)
		}

		vol, ok := volatilities[volatility]
		if !ok {
			return shapeErrorf("functions", "unknown provolatile %q on %s.%s", volatility, schema, name)
		}

		fn := &catalog.Function{
			Schema:          schema,
			Name:            name,
			Args:            args,
			Language:        language,
			Returns:         nullableString(returns),
			Volatility:      vol,
			Strict:          strict,
			SecurityDefiner: secdef,
			IsProcedure:     prokind == "p",
			Definition:      definition,
			Comment:         nullableString(comment),
		}
		functions[fn.ID()] = fn
		cat.Functions = append(cat.Functions, fn)
		return nil
	})
	if err != nil {
		return err
	}

	return i.query(ctx, "function_parameters", queryFunctionParameters, func(rows *sql.Rows) error {
		var schema, name, args, paramName, paramType, mode string
		var ord int
		if err := rows.Scan(&schema, &name, &args, &ord, &paramName, &paramType, &mode); err != nil {
			return shapeErrorf("function_parameters", "scan: %v", err)
		}
		id := catalog.FunctionID(schema, name, args)
		fn, ok := functions[id]
		if !ok {
			return shapeErrorf("function_parameters", "parameter %d of missing function %s", ord, id)
		}
		pmode, ok := parameterModes[mode]
		if !ok {
			return shapeErrorf("function_parameters", "unknown proargmode %q on %s", mode, id)
		}
		fn.Parameters = append(fn.Parameters, catalog.Parameter{
			Name:     paramName,
			DataType: paramType,
			Mode:     pmode,
		})
		return nil
	})
}

func (i *Inspector) loadAggregates(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "aggregates", queryAggregates, func(rows *sql.Rows) error {
		var schema, name, args, stateType, transitionFn string
		var stateIsArray bool
		var stateElemSchema, stateElemName, finalFn, combineFn, initVal, comment sql.NullString
		if err := rows.Scan(&schema, &name, &args, &stateType, &stateIsArray,
			&stateElemSchema, &stateElemName, &transitionFn, &finalFn, &combineFn,
			&initVal, &comment); err != nil {
			return shapeErrorf("aggregates", "scan: %v", err)
		}

		agg := &catalog.Aggregate{
			Schema:           schema,
			Name:             name,
			Args:             args,
			StateType:        stateType,
			TransitionFunc:   transitionFn,
			FinalFunc:        nullableString(finalFn),
			CombineFunc:      nullableString(combineFn),
			InitialCondition: nullableString(initVal),
			Comment:          nullableString(comment),
		}

		// Dependency tracking unwraps an array state type to its element;
		// rendered SQL keeps the array notation in StateType.
		if stateIsArray {
			if es := nullableString(stateElemSchema); es != "" && !catalog.IsSystemSchema(es) {
				agg.Deps = append(agg.Deps, catalog.TypeID(es, nullableString(stateElemName)))
			}
		}

		cat.Aggregates = append(cat.Aggregates, agg)
		return nil
	})
}
