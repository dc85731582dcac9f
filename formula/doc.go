/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package formula implements the indicator formula language.

A formula combines aggregation functions over survey fields with arithmetic:

	(COUNT(Vaccinated) / COUNT(Total Population)) * 100
	SUM(Price * Quantity) / COUNT(Order Id)
	AVG(Age) - 5

Field names may contain spaces; a field reference is the text between two
delimiters with surrounding whitespace trimmed. The delimiters are the
parentheses, the comma and the operators + - * /. Function names are
recognised case-insensitively and only when followed immediately by "(".

# Pipeline

A formula passes through four stages, each reporting failures as *Error with
the stage and a byte position in the source:

	Tokenize  split the source into positioned tokens
	Parse     build the expression tree (Node) by recursive descent
	Resolve   bind field references to the dataset schema and check types
	Evaluate  aggregate over the filtered rows and combine the results

Compile performs the first two stages and returns an Expression that is safe to
cache and share: the tree is never modified after parsing and does not depend
on any schema.

	e, err := formula.Compile("SUM(a)")
	if err != nil {
		fmt.Println(err.(*formula.Error).Pretty("SUM(a)"))
	}
	res, err := e.Evaluate(ctx, ds, condition.Criteria{"b": "x"})

# Grammar

	expr   := term (('+'|'-') term)*
	term   := factor (('*'|'/') factor)*
	factor := NUMBER | FIELD | FUNC '(' expr ')' | '(' expr ')'

Every field must appear inside an aggregation and aggregations do not nest.
Arithmetic inside an aggregation argument is evaluated per row:
SUM(Price * Quantity) sums the row products.
*/
package formula
