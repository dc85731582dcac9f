/*
Package condition compiles indicator filter criteria into row predicates.

Criteria are the JSON objects stored with an indicator. Each key names a
survey field and each value restricts it:

	{"District": "North"}                  equality
	{"District": ["North", "East"]}        membership
	{"Age": {"gte": 18, "lt": 60}}         range
	{"Name": {"like": "Jo%"}}              LIKE with % and _ wildcards

The object form accepts eq, ne, gt, gte, lt, lte, min, max, in and like.
min is an alias for gte and max for lte. Several keys are combined with AND.

Field names are resolved through the dataset schema, so "district" matches
the column "District". Constraint values are coerced to the field kind: numbers
for numeric columns and case-sensitive text for categorical ones.

A null cell never satisfies a comparison. Only an explicit null criterion
({"District": null}) selects rows where the value is missing.

# Usage

	cond, err := condition.Compile(condition.Criteria{"b": "x"}, ds.Schema())
	if err != nil {
		return err
	}
	for _, row := range ds.Rows() {
		if cond.Evaluate(row) {
			// ...
		}
	}

The predicate is compiled once with expr-lang/expr and can be shared between
goroutines.
*/
package condition
