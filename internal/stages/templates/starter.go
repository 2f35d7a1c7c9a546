package templates

import (
	"fmt"

	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/languages"
)

var starters = map[languages.LanguageType]string{
	languages.JS: `// Write your solution here
function solution(nums, target) {
    const seen = new Map();
    for (let i = 0; i < nums.length; i++) {
        const complement = target - nums[i];
        if (seen.has(complement)) {
            return [seen.get(complement), i];
        }
        seen.set(nums[i], i);
    }
    return [];
}

module.exports = solution;
`,
	languages.PYTHON: `# Write your solution here
def solution(nums, target):
    seen = {}
    for i, num in enumerate(nums):
        complement = target - num
        if complement in seen:
            return [seen[complement], i]
        seen[num] = i
    return []
`,
	languages.CPP: `#include <vector>
#include <unordered_map>
using namespace std;

class Solution {
public:
    vector<int> solution(vector<int>& nums, int target) {
        // Write your solution here
        unordered_map<int, int> seen;
        for (int i = 0; i < (int)nums.size(); i++) {
            int complement = target - nums[i];
            if (seen.count(complement)) {
                return {seen[complement], i};
            }
            seen[nums[i]] = i;
        }
        return {};
    }
};
`,
	languages.JAVA: `import java.util.*;

class Solution {
    public int[] solution(int[] nums, int target) {
        // Write your solution here
        Map<Integer, Integer> seen = new HashMap<>();
        for (int i = 0; i < nums.length; i++) {
            int complement = target - nums[i];
            if (seen.containsKey(complement)) {
                return new int[] {seen.get(complement), i};
            }
            seen.put(nums[i], i);
        }
        return new int[0];
    }
}
`,
}

// Starter returns the starter solution written by the init command.
func Starter(lang languages.LanguageType) (string, error) {
	src, ok := starters[lang]
	if !ok {
		return "", fmt.Errorf("%w: no starter for language %d", errors.ErrUnsupportedLanguage, lang)
	}
	return src, nil
}
