// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package classify labels raw document content with format and intent.
//
// Format detection is fully heuristic: valid JSON wins, then email header and
// salutation indicators, then PDF markers, with plain text as the default.
// Intent classification tries keyword patterns first for speed and only falls
// back to the external model when no pattern matches. A failure anywhere
// degrades gracefully rather than aborting processing; the caller always
// receives a usable core.Classification.
package classify
